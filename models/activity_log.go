package models

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending      Status = "Pending"
	StatusApproved     Status = "Approved"
	StatusRejected     Status = "Rejected"
	StatusManualReview Status = "Manual_Review"
)

// Open reports whether the record still awaits a final decision.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusManualReview
}

type Source string

const (
	SourceGeo    Source = "geo"
	SourceML     Source = "ml"
	SourceManual Source = "manual"
	SourceNone   Source = "none"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

type Evidence struct {
	URI  string    `json:"uri"`
	Type MediaType `json:"type"`
}

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ActivityLog is one user submission and its verification state.
// Rows are hard-deleted; there is no soft-delete column.
type ActivityLog struct {
	ID                 string                          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID            string                          `json:"ownerId" gorm:"not null;index;type:varchar(128)"`
	Category           string                          `json:"category" gorm:"not null;type:varchar(64)"`
	Description        string                          `json:"description" gorm:"not null;type:text"`
	Evidence           datatypes.JSONSlice[Evidence]   `json:"evidence"`
	Coordinates        datatypes.JSONSlice[Coordinate] `json:"coordinates"`
	Latitude           *float64                        `json:"latitude"`
	Longitude          *float64                        `json:"longitude"`
	MaxPoints          int                             `json:"maxPoints" gorm:"not null;default:0"`
	Status             Status                          `json:"status" gorm:"not null;type:varchar(20);default:'Pending';index"`
	ConfidenceScore    *float64                        `json:"confidenceScore"`
	AwardedPoints      int                             `json:"awardedPoints" gorm:"not null;default:0"`
	VerificationSource Source                          `json:"verificationSource" gorm:"not null;type:varchar(10);default:'none'"`
	VerifierOutput     datatypes.JSON                  `json:"verifierOutput,omitempty"`
	SubmittedAt        time.Time                       `json:"submittedAt" gorm:"not null;index"`
	UpdatedAt          time.Time                       `json:"updatedAt"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

// Disposition is the outcome written onto a record by the decision engine or an admin action.
type Disposition struct {
	Status          Status         `json:"status"`
	ConfidenceScore *float64       `json:"confidenceScore"`
	AwardedPoints   int            `json:"awardedPoints"`
	Source          Source         `json:"source"`
	VerifierOutput  datatypes.JSON `json:"verifierOutput,omitempty"`
}
