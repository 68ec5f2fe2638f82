// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"
	"math/rand/v2"
)

const MaxNameLen = 36

var (
	ErrNameTooLong = errors.New("name too long")
	ErrNameEmpty   = errors.New("name empty")
)

// Palette is the fixed set of colors a participant can be assigned.
var Palette = []string{
	"#ef4444", "#f97316", "#f59e0b", "#eab308", "#84cc16", "#10b981",
	"#06b6d4", "#3b82f6", "#6366f1", "#8b5cf6", "#ec4899",
}

// AssignColor picks uniformly from the palette, with replacement.
// Two participants in one room sharing a color is allowed.
func AssignColor() string {
	return Palette[rand.IntN(len(Palette))]
}

// Participant is a member of one room for the lifetime of one connection.
// Color is assigned at join and never changes afterwards.
type Participant struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// NewParticipant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewParticipant(name, color string) (*Participant, error) {
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &Participant{Name: name, Color: color}, nil
}
