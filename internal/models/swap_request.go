package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SwapStatus is the lifecycle state of a swap request.
//
// pending -> {accepted, rejected, cancelled}
// accepted -> completion_requested -> completed
//
// Transitions are monotonic; rejected, cancelled and completed are terminal.
type SwapStatus string

const (
	SwapPending             SwapStatus = "pending"
	SwapAccepted            SwapStatus = "accepted"
	SwapRejected            SwapStatus = "rejected"
	SwapCancelled           SwapStatus = "cancelled"
	SwapCompletionRequested SwapStatus = "completion_requested"
	SwapCompleted           SwapStatus = "completed"
)

// SwapRequest is a proposed exchange of named skills between two users.
//
// The completion fields record the two-person handshake: one party requests
// completion, and only the other party may confirm it.
type SwapRequest struct {
	gorm.Model
	FromUserID uint `gorm:"not null;index"`
	ToUserID   uint `gorm:"not null;index"`

	OfferedSkills   datatypes.JSONSlice[string] `gorm:"not null"`
	RequestedSkills datatypes.JSONSlice[string] `gorm:"not null"`
	Note            string

	Status SwapStatus `gorm:"type:varchar(30);not null;default:'pending';index"`

	CompletionRequestedByID *uint
	CompletionReceivedByID  *uint

	FromUser User `gorm:"foreignKey:FromUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ToUser   User `gorm:"foreignKey:ToUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
