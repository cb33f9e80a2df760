package domain

import "time"

// Stay is a read-only projection of one reservation: an animal occupying a
// kennel over [StartAt, EndAt). EndAt == nil means the animal has not checked
// out yet (open-ended stay).
type Stay struct {
	ID       string
	KennelID string
	StartAt  time.Time
	EndAt    *time.Time
	IsHotel  bool

	// Denormalized display attributes; opaque to the timeline core.
	AnimalID         string
	AnimalName       string
	AnimalSpecies    string
	AnimalPublicCode string
	AnimalPhotoURL   *string
}

// LanedStay is a Stay annotated by the timeline core.
type LanedStay struct {
	Stay
	Lane        int
	HasConflict bool
}

// Lane is one row of a kennel's grid. Stays within a lane do not overlap,
// except when the packer had to overflow past capacity.
type Lane []LanedStay
