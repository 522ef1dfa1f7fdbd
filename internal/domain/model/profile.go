package model

import (
	"time"

	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/enums"
)

type Profile struct {
	UserID          int64
	Username        string
	DisplayName     string
	Age             int
	Gender          enums.Gender
	PreferredGender enums.GenderPreference
	Bio             string
	PhotoFileID     string
	Status          enums.ProfileStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProfilePatch carries a partial update. Nil fields keep the stored value.
type ProfilePatch struct {
	UserID          int64
	Username        *string
	DisplayName     *string
	Age             *int
	Gender          *enums.Gender
	PreferredGender *enums.GenderPreference
	Bio             *string
	PhotoFileID     *string
	Status          *enums.ProfileStatus
}
