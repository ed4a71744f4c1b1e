package interpreter

import (
	"encoding/json"
	"log"

	"github.com/NotCoffee418/p1decoder/pkg/state"
)

// Reading is the JSON envelope broadcast by the interpreter API for
// every decoded telegram.
type Reading struct {
	// ReceivedAt is the reader host wall clock in RFC3339.
	ReceivedAt string `json:"received_at"`

	// Prefix and Identification come from the telegram header.
	Prefix         string `json:"prefix"`
	Identification string `json:"identification"`

	// State is the snapshot decoded from the telegram.
	State *state.State `json:"state"`
}

func (r *Reading) ToJsonBytes() []byte {
	data, err := json.Marshal(r)
	if err != nil {
		log.Printf("Failed to marshal reading: %v", err)
		return nil
	}
	return data
}

func ReadingFromJsonBytes(data []byte) *Reading {
	var reading Reading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil
	}
	return &reading
}
