// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package gateapi

import (
	"time"

	"github.com/esalama/gatecheck/internal/models"
)

// OutcomeKind tags the result of a token validation attempt.
type OutcomeKind int

const (
	// OutcomeValid means the service accepted the token.
	OutcomeValid OutcomeKind = iota
	// OutcomeInvalid means the service was reached and rejected the token.
	OutcomeInvalid
	// OutcomeTransportFailure means the service could not be reached or
	// answered unintelligibly. The token itself was never judged.
	OutcomeTransportFailure
)

// Outcome is the result of one validation attempt. The two rejection
// kinds are never conflated: an Invalid outcome enters the dedup window
// on the scanner, a TransportFailure does not, so the same code may be
// retried as soon as connectivity returns.
type Outcome struct {
	Kind OutcomeKind

	// Set when Kind is OutcomeValid.
	StudentID   string
	StudentName string
	ClassName   string
	Intent      models.Intent
	Timestamp   time.Time

	// Set when Kind is OutcomeInvalid.
	Reason string

	// Set when Kind is OutcomeTransportFailure.
	Err error
}

// Invalid builds a protocol-level rejection outcome.
func Invalid(reason string) Outcome {
	return Outcome{Kind: OutcomeInvalid, Reason: reason}
}

// TransportFailure builds an outcome for an unreachable or garbled service.
func TransportFailure(err error) Outcome {
	return Outcome{Kind: OutcomeTransportFailure, Err: err}
}
