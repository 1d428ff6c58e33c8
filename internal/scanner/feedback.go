// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package scanner

// State names the pipeline's externally visible condition.
type State string

const (
	StateReady      State = "ready"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateRejected   State = "rejected"
	StateTransient  State = "transient_error"
	StateHardError  State = "hard_error"
)

// Color hints for the operator display.
const (
	ColorNeutral = "white"
	ColorGreen   = "green"
	ColorRed     = "red"
	ColorAmber   = "amber"
)

// Feedback is one UI event. The feedback stream is a pure observer of
// the pipeline; nothing downstream of it drives a state transition.
type Feedback struct {
	State     State
	Message   string
	ColorHint string
}
