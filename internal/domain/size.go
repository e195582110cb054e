package domain

import "fmt"

// MissionSize is the coarse effort estimate attached to a mission.
type MissionSize string

// Valid mission sizes
const (
	SizeSmall  MissionSize = "S"
	SizeMedium MissionSize = "M"
	SizeLarge  MissionSize = "L"
)

// NewMissionSize creates a new MissionSize value object with validation
func NewMissionSize(value string) (MissionSize, error) {
	s := MissionSize(value)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Validate checks if the size is valid
func (s MissionSize) Validate() error {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return nil
	default:
		return fmt.Errorf("invalid mission size %q: must be S, M, or L", string(s))
	}
}

// String returns the string representation
func (s MissionSize) String() string {
	return string(s)
}

// Bigger returns the next size up, saturating at L
func (s MissionSize) Bigger() MissionSize {
	switch s {
	case SizeSmall:
		return SizeMedium
	default:
		return SizeLarge
	}
}

// SizeForStepCount maps the number of steps in a mission to a size:
// 1-2 steps are S, 3-4 are M, anything larger is L.
func SizeForStepCount(n int) MissionSize {
	switch {
	case n <= 2:
		return SizeSmall
	case n <= 4:
		return SizeMedium
	default:
		return SizeLarge
	}
}
