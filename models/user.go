package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BloodGroups is the set of accepted ABO/Rh values.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// GeoPoint is a GeoJSON point: coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Address pairs a human-readable label with its geospatial location.
type Address struct {
	Name     string   `bson:"name" json:"name"`
	Location GeoPoint `bson:"location" json:"location"`
}

// MedicalReports holds the four optional hosted report URLs a donor can
// attach to their profile.
type MedicalReports struct {
	Antigen    string `bson:"antigen,omitempty" json:"antigen,omitempty"`
	Serology   string `bson:"serology,omitempty" json:"serology,omitempty"`
	Antibody   string `bson:"antibody,omitempty" json:"antibody,omitempty"`
	BloodCount string `bson:"bloodCount,omitempty" json:"bloodCount,omitempty"`
}

// User is a donor/requester profile, keyed by the identity provider's
// subject id (clerkID). IsUpdated stays false until the full profile form
// has been completed once; incomplete profiles are excluded from donor
// search and may not create blood requests.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClerkID    string             `bson:"clerkID" json:"clerkID"`
	FirstName  string             `bson:"firstName" json:"firstName"`
	LastName   string             `bson:"lastName" json:"lastName"`
	Phone      string             `bson:"phone" json:"phone"`
	NID        string             `bson:"nid,omitempty" json:"nid,omitempty"`
	Address    Address            `bson:"address" json:"address"`
	ImageURL   string             `bson:"imageURL,omitempty" json:"imageURL,omitempty"`
	BloodGroup string             `bson:"bloodGroup" json:"bloodGroup"`
	DOB        *time.Time         `bson:"dob,omitempty" json:"dob,omitempty"`
	Reports    MedicalReports     `bson:"reports,omitempty" json:"reports,omitempty"`
	IsUpdated  bool               `bson:"isUpdated" json:"isUpdated"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsValidBloodGroup reports whether g is one of the eight accepted values.
func IsValidBloodGroup(g string) bool {
	for _, bg := range BloodGroups {
		if g == bg {
			return true
		}
	}
	return false
}
