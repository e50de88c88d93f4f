package scenario

import (
	"time"

	"github.com/google/uuid"
)

// SaveData is a persisted save slot. Properties hold everything needed to
// re-apply the effects of executed commands without replaying the script.
type SaveData struct {
	ID         uuid.UUID  `json:"id"`
	Script     string     `json:"script"`               // script file name
	Step       int        `json:"step"`                 // number of commands executed
	Properties []Property `json:"properties,omitempty"` // in registration order
	UpdatedAt  time.Time  `json:"updated_at"`
}

func NewSaveData(script string) *SaveData {
	return &SaveData{
		ID:     uuid.New(),
		Script: script,
	}
}
