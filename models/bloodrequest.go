package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestLocation is a free-text address plus a bare [longitude, latitude]
// pair. The pair shape is an index contract: location.coordinates carries a
// 2dsphere index.
type RequestLocation struct {
	Address     string    `bson:"address" json:"address"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// BloodRequest is a plea for donors. RequestedBy references the owning
// User; only that owner may toggle IsPending.
type BloodRequest struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientName    string             `bson:"patientName" json:"patientName"`
	BloodGroup     string             `bson:"bloodGroup" json:"bloodGroup"`
	Location       RequestLocation    `bson:"location" json:"location"`
	BagsNeeded     int                `bson:"bagsNeeded" json:"bagsNeeded"`
	NeededBy       time.Time          `bson:"neededBy" json:"neededBy"`
	ContactNumber  string             `bson:"contactNumber" json:"contactNumber"`
	AdditionalInfo string             `bson:"additionalInfo,omitempty" json:"additionalInfo,omitempty"`
	PatientImage   string             `bson:"patientImage,omitempty" json:"patientImage,omitempty"`
	MedicalReport  string             `bson:"medicalReport,omitempty" json:"medicalReport,omitempty"`
	IsPending      bool               `bson:"isPending" json:"isPending"`
	RequestedBy    primitive.ObjectID `bson:"requestedBy" json:"requestedBy"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
