package models

import (
	"time"
)

type User struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	UID                string    `gorm:"uniqueIndex;not null;type:varchar(128)" json:"uid"`
	FullName           string    `gorm:"not null" json:"fullName"`
	Email              string    `gorm:"uniqueIndex;not null" json:"email"`
	Age                int       `json:"age"`
	City               string    `gorm:"not null" json:"city"`
	State              string    `gorm:"not null" json:"state"`
	Country            string    `gorm:"not null" json:"country"`
	ProfilePicture     string    `json:"profilePicture"`
	SustainabilityGoal string    `json:"sustainabilityGoal"`
	ShortBio           string    `json:"shortBio"`
	ConsentForDataUse  bool      `gorm:"not null" json:"consentForDataUse"`
}
