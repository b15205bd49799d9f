//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package match

import "fmt"

// Mode selects the matching regime. Every task is evaluated under both modes;
// Mode is passed as a parameter end-to-end rather than baked into evaluator
// variants.
type Mode int

const (
	// ModeStrict requires near-exact reproduction of the ground truth.
	ModeStrict Mode = iota
	// ModeFlexible tolerates paraphrased values, omitted optional parameters
	// and extra exploratory calls.
	ModeFlexible
)

// Modes returns both regimes in evaluation order.
func Modes() []Mode {
	return []Mode{ModeStrict, ModeFlexible}
}

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeFlexible:
		return "flexible"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalJSON encodes the mode as its wire name.
func (m Mode) MarshalJSON() ([]byte, error) {
	switch m {
	case ModeStrict, ModeFlexible:
		return []byte(`"` + m.String() + `"`), nil
	default:
		return nil, fmt.Errorf("invalid match mode %d", int(m))
	}
}

// UnmarshalJSON decodes a mode from its wire name.
func (m *Mode) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"strict"`:
		*m = ModeStrict
	case `"flexible"`:
		*m = ModeFlexible
	default:
		return fmt.Errorf("invalid match mode %s", string(data))
	}
	return nil
}
