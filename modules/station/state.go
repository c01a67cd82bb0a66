package station

import (
	"encoding/json"
	"fmt"
)

// State is the persisted knob document.
type State struct {
	Params Params `json:"params"`
}

// MarshalState encodes p as a State document.
func MarshalState(p Params) ([]byte, error) {
	return json.Marshal(State{Params: p})
}

// LoadState decodes a State document. Keys absent from data keep their
// default values, and the result is clamped to the knob ranges.
func LoadState(data []byte) (Params, error) {
	st := State{Params: DefaultParams()}
	if err := json.Unmarshal(data, &st); err != nil {
		return Params{}, fmt.Errorf("station: decode state: %w", err)
	}

	return st.Params.Clamped(), nil
}
