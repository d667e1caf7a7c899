package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendshipStatus defines the state of the edge between two users.
type FriendshipStatus string

const (
	// StatusPending means a friend request has been sent but not yet accepted.
	StatusPending FriendshipStatus = "pending"

	// StatusAccepted means the request was accepted; the edge is now mutual and
	// is matched in either direction.
	StatusAccepted FriendshipStatus = "accepted"
)

// Friendship is a directed request edge that collapses into an undirected
// friends edge on acceptance. The composite primary key keeps the edge unique
// per direction; the normalized pair columns carry a unique index that keeps
// the unordered pair unique, so two concurrent requests in opposite directions
// cannot both insert (a counter-request resolves the existing row instead).
type Friendship struct {
	RequesterID uint             `gorm:"primaryKey"`
	AddresseeID uint             `gorm:"primaryKey"`
	PairMinID   uint             `gorm:"not null;uniqueIndex:idx_friendship_pair"`
	PairMaxID   uint             `gorm:"not null;uniqueIndex:idx_friendship_pair"`
	Status      FriendshipStatus `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Requester User `gorm:"foreignKey:RequesterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Addressee User `gorm:"foreignKey:AddresseeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// BeforeCreate derives the normalized pair columns from the directed edge.
func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	f.PairMinID, f.PairMaxID = f.RequesterID, f.AddresseeID
	if f.PairMinID > f.PairMaxID {
		f.PairMinID, f.PairMaxID = f.PairMaxID, f.PairMinID
	}
	return nil
}
