package models

import "time"

// DefaultAvatarPath is served to clients when a donor has no profile image.
const DefaultAvatarPath = "/default-avatar.png"

// RequesterSummary is the only slice of a User exposed on a blood-request
// listing. Phone, address, NID and medical reports must never appear here.
type RequesterSummary struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageURL,omitempty"`
	ClerkID   string `json:"clerkID"`
}

// BloodRequestListing is the external shape of a BloodRequest.
type BloodRequestListing struct {
	ID             string            `json:"id"`
	PatientName    string            `json:"patientName"`
	BloodGroup     string            `json:"bloodGroup"`
	Location       RequestLocation   `json:"location"`
	BagsNeeded     int               `json:"bagsNeeded"`
	NeededBy       time.Time         `json:"neededBy"`
	ContactNumber  string            `json:"contactNumber"`
	AdditionalInfo string            `json:"additionalInfo,omitempty"`
	PatientImage   string            `json:"patientImage,omitempty"`
	MedicalReport  string            `json:"medicalReport,omitempty"`
	IsPending      bool              `json:"isPending"`
	RequestedBy    *RequesterSummary `json:"requestedBy,omitempty"`
	CreatedAt      string            `json:"createdAt"`
}

// DonorResult is the external shape of a donor search hit.
type DonorResult struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	BloodGroup  string    `json:"bloodGroup"`
	Location    string    `json:"location"`
	Coordinates []float64 `json:"coordinates"`
	ImageURL    string    `json:"imageURL"`
	Phone       string    `json:"phone"`
	DOB         *string   `json:"dob"`
}

// ListingView projects a stored request into its listing shape. requester
// is the resolved owner, or nil when it could not be populated.
func (r BloodRequest) ListingView(requester *User) BloodRequestListing {
	listing := BloodRequestListing{
		ID:             r.ID.Hex(),
		PatientName:    r.PatientName,
		BloodGroup:     r.BloodGroup,
		Location:       r.Location,
		BagsNeeded:     r.BagsNeeded,
		NeededBy:       r.NeededBy,
		ContactNumber:  r.ContactNumber,
		AdditionalInfo: r.AdditionalInfo,
		PatientImage:   r.PatientImage,
		MedicalReport:  r.MedicalReport,
		IsPending:      r.IsPending,
		CreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if requester != nil {
		listing.RequestedBy = &RequesterSummary{
			FirstName: requester.FirstName,
			LastName:  requester.LastName,
			ImageURL:  requester.ImageURL,
			ClerkID:   requester.ClerkID,
		}
	}
	return listing
}

// DonorView projects a complete profile into a donor search hit.
func (u User) DonorView() DonorResult {
	imageURL := u.ImageURL
	if imageURL == "" {
		imageURL = DefaultAvatarPath
	}

	var dob *string
	if u.DOB != nil {
		formatted := u.DOB.UTC().Format(time.RFC3339)
		dob = &formatted
	}

	return DonorResult{
		ID:          u.ID.Hex(),
		Name:        u.FirstName + " " + u.LastName,
		BloodGroup:  u.BloodGroup,
		Location:    u.Address.Name,
		Coordinates: u.Address.Location.Coordinates,
		ImageURL:    imageURL,
		Phone:       u.Phone,
		DOB:         dob,
	}
}
