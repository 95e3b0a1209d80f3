package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleUser() User {
	dob := time.Date(1998, 4, 12, 0, 0, 0, 0, time.UTC)
	return User{
		ID:        primitive.NewObjectID(),
		ClerkID:   "user_2abc",
		FirstName: "Rahim",
		LastName:  "Uddin",
		Phone:     "01712345678",
		NID:       "1990123456789",
		Address: Address{
			Name:     "Dhanmondi, Dhaka",
			Location: NewGeoPoint(90.3742, 23.7461),
		},
		ImageURL:   "https://cdn.example.com/avatar.png",
		BloodGroup: "O+",
		DOB:        &dob,
		Reports: MedicalReports{
			Antigen:  "https://cdn.example.com/antigen.pdf",
			Serology: "https://cdn.example.com/serology.pdf",
		},
		IsUpdated: true,
	}
}

func TestDonorView(t *testing.T) {
	user := sampleUser()
	view := user.DonorView()

	assert.Equal(t, user.ID.Hex(), view.ID)
	assert.Equal(t, "Rahim Uddin", view.Name)
	assert.Equal(t, "O+", view.BloodGroup)
	assert.Equal(t, "Dhanmondi, Dhaka", view.Location)
	assert.Equal(t, []float64{90.3742, 23.7461}, view.Coordinates)
	assert.Equal(t, "https://cdn.example.com/avatar.png", view.ImageURL)
	assert.Equal(t, "01712345678", view.Phone)
	require.NotNil(t, view.DOB)
	assert.Equal(t, "1998-04-12T00:00:00Z", *view.DOB)
}

func TestDonorViewFallbacks(t *testing.T) {
	user := sampleUser()
	user.ImageURL = ""
	user.DOB = nil

	view := user.DonorView()

	assert.Equal(t, DefaultAvatarPath, view.ImageURL)
	assert.Nil(t, view.DOB)

	serialized, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(serialized), `"dob":null`)
}

func TestDonorViewNeverLeaksPrivateFields(t *testing.T) {
	serialized, err := json.Marshal(sampleUser().DonorView())
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(serialized, &fields))

	for _, forbidden := range []string{"nid", "reports", "clerkID", "isUpdated", "antigen", "serology", "address"} {
		assert.NotContains(t, fields, forbidden)
	}
}

func TestListingView(t *testing.T) {
	requester := sampleUser()
	created := time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)
	request := BloodRequest{
		ID:          primitive.NewObjectID(),
		PatientName: "Karim",
		BloodGroup:  "AB-",
		Location: RequestLocation{
			Address:     "Mirpur 10, Dhaka",
			Coordinates: []float64{90.3654, 23.8069},
		},
		BagsNeeded:    2,
		NeededBy:      created.AddDate(0, 0, 3),
		ContactNumber: "01898765432",
		IsPending:     true,
		RequestedBy:   requester.ID,
		CreatedAt:     created,
	}

	listing := request.ListingView(&requester)

	assert.Equal(t, request.ID.Hex(), listing.ID)
	assert.Equal(t, "2026-03-05T09:30:00Z", listing.CreatedAt)
	require.NotNil(t, listing.RequestedBy)
	assert.Equal(t, "Rahim", listing.RequestedBy.FirstName)
	assert.Equal(t, "Uddin", listing.RequestedBy.LastName)
	assert.Equal(t, "user_2abc", listing.RequestedBy.ClerkID)
	assert.Equal(t, "https://cdn.example.com/avatar.png", listing.RequestedBy.ImageURL)
}

func TestListingViewWithoutRequester(t *testing.T) {
	listing := BloodRequest{ID: primitive.NewObjectID()}.ListingView(nil)
	assert.Nil(t, listing.RequestedBy)

	serialized, err := json.Marshal(listing)
	require.NoError(t, err)
	assert.NotContains(t, string(serialized), "requestedBy")
}

func TestListingViewRequesterAllowlist(t *testing.T) {
	requester := sampleUser()
	listing := BloodRequest{ID: primitive.NewObjectID(), RequestedBy: requester.ID}.ListingView(&requester)

	serialized, err := json.Marshal(listing.RequestedBy)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(serialized, &fields))

	// Exactly the four public fields, nothing the stored User carries.
	assert.Equal(t, map[string]bool{
		"firstName": true, "lastName": true, "imageURL": true, "clerkID": true,
	}, keySet(fields))

	for _, forbidden := range []string{"phone", "address", "nid", "reports", "dob"} {
		assert.NotContains(t, fields, forbidden)
	}
}

func TestIsValidBloodGroup(t *testing.T) {
	for _, valid := range BloodGroups {
		assert.True(t, IsValidBloodGroup(valid), valid)
	}
	for _, invalid := range []string{"", "o+", "C+", "AB", "O positive"} {
		assert.False(t, IsValidBloodGroup(invalid), invalid)
	}
}

func keySet(fields map[string]interface{}) map[string]bool {
	keys := make(map[string]bool, len(fields))
	for k := range fields {
		keys[k] = true
	}
	return keys
}
