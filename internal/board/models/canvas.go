package models

import (
	"bytes"
	"encoding/json"
	"regexp"
)

// CanvasObject is one persisted drawable mutation unit. ObjectID is assigned
// by the canvas store, unique within a board, monotonically increasing from 1
// and never reused while the log lives. Object content is opaque to the
// engine beyond being well-formed JSON.
type CanvasObject struct {
	ObjectID int64           `json:"object_id"`
	Object   json.RawMessage `json:"object"`
}

// Snapshot is the board state replayed to a newly joined client. Objects
// appear in log order; options carry only keys that were explicitly set.
type Snapshot struct {
	Options map[string]string `json:"options"`
	Objects []CanvasObject    `json:"objects"`
}

// OptionBackgroundColor is the only recognized board display option.
const OptionBackgroundColor = "background_color"

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidObjectPayload reports whether raw is acceptable canvas object content:
// non-empty, well-formed JSON, and not the literal null.
func ValidObjectPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	return json.Valid(trimmed)
}

// ValidOptions reports whether an options delta passes whitelist validation:
// the map is non-empty and every key is recognized with a value matching its
// format rule. A single violation invalidates the whole delta.
func ValidOptions(options map[string]string) bool {
	if len(options) == 0 {
		return false
	}
	for name, val := range options {
		switch name {
		case OptionBackgroundColor:
			if !colorPattern.MatchString(val) {
				return false
			}
		default:
			return false
		}
	}
	return true
}
