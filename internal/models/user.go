package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AvailabilityAlways is the catch-all availability slot. New accounts start with
// it, and listing queries treat it as always requested.
const AvailabilityAlways = "Always"

// AvailabilitySlots is the fixed set of values a profile's availability may contain.
var AvailabilitySlots = []string{
	AvailabilityAlways, "Occasionally", "Monthly", "Biweekly", "Weekly", "One-time",
	"Weekdays", "Weekends",
	"Early Mornings", "Mornings", "Afternoons", "Evenings", "Nights", "Late Nights",
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
	"Specific Hours", "Flexible", "By Appointment", "Unavailable Temporarily",
}

// IsValidAvailability reports whether slot is one of the allowed values.
func IsValidAvailability(slot string) bool {
	for _, s := range AvailabilitySlots {
		if s == slot {
			return true
		}
	}
	return false
}

// User represents a user in the system.
//
// Friend and swap-request lists are not stored on the user; they are derived
// from the friendships and swap_requests tables. AverageRating and ReviewCount
// are the only materialized aggregates, recomputed from the feedbacks table on
// every submission.
type User struct {
	gorm.Model
	Handle       string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user';index"`

	ProfilePicture string `gorm:"size:512;not null;default:'default.jpg'"`
	Bio            string
	Availability   datatypes.JSONSlice[string]
	SkillsOffered  datatypes.JSONSlice[string]
	SkillsWanted   datatypes.JSONSlice[string]

	IsPublic bool `gorm:"not null;default:true"`
	IsBanned bool `gorm:"not null;default:false;index"`

	AverageRating float64 `gorm:"not null;default:0"`
	ReviewCount   int64   `gorm:"not null;default:0"`
}
