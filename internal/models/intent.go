// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package models

import "fmt"

// Intent is the declared direction of a check-in.
type Intent string

const (
	IntentArrival   Intent = "arrival"
	IntentDeparture Intent = "departure"
)

// ParseIntent validates and converts a string into an Intent.
func ParseIntent(s string) (Intent, error) {
	switch Intent(s) {
	case IntentArrival, IntentDeparture:
		return Intent(s), nil
	}
	return "", fmt.Errorf("unknown intent %q", s)
}

func (i Intent) String() string {
	return string(i)
}
