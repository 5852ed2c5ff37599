package requests

import (
	"encoding/json"

	"github.com/brettbedarf/treefs"
)

// InsertDTO is the JSON representation of [treefs.InsertRequest]
//
// `id` and `children` must both be present; `id` may be null for directories.
type InsertDTO struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Parent   string          `json:"parent"`
	ID       json.RawMessage `json:"id"`       // absent = nil, null = "null"
	Children *[]*treefs.Node `json:"children"` // absent or null = nil
}

// RemoveDTO is the JSON representation of [treefs.RemoveRequest]
type RemoveDTO struct {
	Name   string `json:"name"`
	Parent string `json:"parent"`
}

// UpdateDTO carries the new values of a rename (`name`) or move (`parent`)
type UpdateDTO struct {
	Name   *string `json:"name,omitempty"`
	Parent *string `json:"parent,omitempty"`
}

// RenameDTO is the JSON representation of [treefs.RenameRequest]
type RenameDTO struct {
	Name   string     `json:"name"`
	Parent string     `json:"parent"`
	Update *UpdateDTO `json:"update"`
}

// MoveDTO is the JSON representation of [treefs.MoveRequest]
type MoveDTO struct {
	ID     json.RawMessage `json:"id"`
	Name   string          `json:"name"`
	Parent string          `json:"parent"`
	Update *UpdateDTO      `json:"update"`
}
