package composer

import (
	"encoding/json"
	"fmt"
)

// State is the persisted document. Absent keys leave the engine unchanged
// when loading.
type State struct {
	Header      *string `json:"header,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	Octave      *string `json:"octave,omitempty"`
	SlideAccent *string `json:"slideAccent,omitempty"`
	Time        *string `json:"time,omitempty"`
	ResetOnRun  *bool   `json:"resetOnRun,omitempty"`
	Running     *bool   `json:"running,omitempty"`
}

// ScoreState returns a State holding only the score keys of s.
func ScoreState(s Score) State {
	return State{
		Header:      &s.Header,
		Notes:       &s.Notes,
		Octave:      &s.Octave,
		SlideAccent: &s.SlideAccent,
		Time:        &s.Time,
	}
}

// ApplyScore overlays the score keys present in st onto base and reports
// whether any were present.
func (st State) ApplyScore(base Score) (Score, bool) {
	changed := false

	for _, f := range []struct {
		src *string
		dst *string
	}{
		{st.Header, &base.Header},
		{st.Notes, &base.Notes},
		{st.Octave, &base.Octave},
		{st.SlideAccent, &base.SlideAccent},
		{st.Time, &base.Time},
	} {
		if f.src != nil {
			*f.dst = *f.src
			changed = true
		}
	}

	return base, changed
}

// Snapshot captures the full persisted state.
func (c *Composer) Snapshot() State {
	st := ScoreState(c.Score())
	resetOnRun := c.ResetOnRun()
	running := c.Running()
	st.ResetOnRun = &resetOnRun
	st.Running = &running

	return st
}

// Apply loads st. Any score key marks the score dirty; a running key sets the
// run state and rewinds the cursor on the next Process call.
func (c *Composer) Apply(st State) {
	if s, changed := st.ApplyScore(c.Score()); changed {
		c.SetScore(s)
	}

	if st.ResetOnRun != nil {
		c.SetResetOnRun(*st.ResetOnRun)
	}

	if st.Running != nil {
		c.SetRunning(*st.Running)
	}
}

// MarshalState encodes the full persisted state as JSON.
func (c *Composer) MarshalState() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

// LoadState decodes a JSON document produced by MarshalState, or any subset
// of its keys, and applies it.
func (c *Composer) LoadState(data []byte) error {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("composer: load state: %w", err)
	}

	c.Apply(st)

	return nil
}
