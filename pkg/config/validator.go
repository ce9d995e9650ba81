// Package config provides configuration validation
package config

import (
	"fmt"
)

// Validator validates a loaded Topology before it is built into a live
// internal/stpcore.Topology.
type Validator struct {
	errors *ConfigErrorList
	file   string
}

// NewValidator creates a new configuration validator.
func NewValidator(file string) *Validator {
	return &Validator{
		errors: &ConfigErrorList{File: file, Valid: true},
		file:   file,
	}
}

// Validate checks structural invariants spec.md §4.4/§4.5 require of a
// topology before it is built: no self-loops, no duplicate (unordered)
// links, and non-negative port indices.
func (v *Validator) Validate(top *Topology) *ConfigErrorList {
	if top == nil {
		v.addError("", "topology is nil")
		return v.errors
	}
	if len(top.Links) == 0 {
		v.addWarning("links", "no links defined in topology")
	}

	seen := make(map[string]int) // unordered bridge-pair key -> link index
	for i, link := range top.Links {
		v.validateLink(&link, i, seen)
	}
	return v.errors
}

func (v *Validator) validateLink(link *LinkSpec, index int, seen map[string]int) {
	prefix := fmt.Sprintf("links[%d]", index)

	if link.BridgeA == "" || link.BridgeB == "" {
		v.addError(prefix, "both bridge endpoints are required")
		return
	}
	if link.BridgeA == link.BridgeB {
		v.addError(prefix, fmt.Sprintf("self-loop rejected for bridge %q", link.BridgeA))
		return
	}
	if link.PortA < 0 {
		v.addError(prefix+".port_a", fmt.Sprintf("port index must be non-negative, got %d", link.PortA))
	}
	if link.PortB < 0 {
		v.addError(prefix+".port_b", fmt.Sprintf("port index must be non-negative, got %d", link.PortB))
	}

	key := unorderedKey(link.BridgeA, link.BridgeB)
	if first, dup := seen[key]; dup {
		v.addError(prefix, fmt.Sprintf("duplicate link between %q and %q (already declared at links[%d])", link.BridgeA, link.BridgeB, first))
	} else {
		seen[key] = index
	}
}

func unorderedKey(a, b string) string {
	if a < b {
		return a + "\x00" + b
	}
	return b + "\x00" + a
}

func (v *Validator) addError(field, message string) {
	v.errors.Add(NewConfigError(v.file, field, message))
}

func (v *Validator) addWarning(field, message string) {
	v.errors.Add(NewConfigWarning(v.file, field, message))
}
