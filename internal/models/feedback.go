package models

import "gorm.io/gorm"

// Feedback is one rating+comment a party leaves on a completed swap. The
// unique index enforces at most one row per (swap request, rater) pair; rows
// are never updated or deleted.
type Feedback struct {
	gorm.Model
	SwapRequestID uint `gorm:"not null;uniqueIndex:idx_feedback_swap_rater"`
	RaterID       uint `gorm:"not null;uniqueIndex:idx_feedback_swap_rater"`
	TargetUserID  uint `gorm:"not null;index"`

	Rating  int    `gorm:"not null"`
	Comment string `gorm:"size:500"`

	SwapRequest SwapRequest `gorm:"foreignKey:SwapRequestID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Rater       User        `gorm:"foreignKey:RaterID;references:ID"`
	TargetUser  User        `gorm:"foreignKey:TargetUserID;references:ID"`
}
