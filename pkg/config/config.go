// Package config provides configuration file loading and parsing for
// spanning-tree topology definitions.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/krisarmstrong/stpsim/internal/stpcore"
)

// Default configuration values (spec.md §3 timer/cost defaults).
const (
	DefaultSTPBridgePriority = 32768 // 0x8000
	DefaultSTPHelloTime      = 2
	DefaultSTPMaxAge         = 20
	DefaultSTPForwardDelay   = 15
	DefaultSTPPathCost       = 19
)

// BridgeSpec is one bridge's configuration as loaded from a topology
// file: its MAC identity and an optional priority override
// (SPEC_FULL.md §4.6 supplemental per-bridge priority override).
type BridgeSpec struct {
	MAC      string `yaml:"mac"`
	Priority uint16 `yaml:"priority,omitempty"`
}

// LinkSpec is one link between two bridge interfaces, with an optional
// path-cost override (SPEC_FULL.md §4.6 supplemental per-link path-cost
// override; 0 means "use the default").
type LinkSpec struct {
	BridgeA  string `yaml:"bridge_a"`
	PortA    int    `yaml:"port_a"`
	BridgeB  string `yaml:"bridge_b"`
	PortB    int    `yaml:"port_b"`
	PathCost uint32 `yaml:"path_cost,omitempty"`
}

// Topology is the file-level representation of a network layout, prior
// to being built into a live internal/stpcore.Topology.
type Topology struct {
	DefaultPriority uint16       `yaml:"default_priority,omitempty"`
	Bridges         []BridgeSpec `yaml:"bridges,omitempty"`
	Links           []LinkSpec   `yaml:"links"`
}

// Load dispatches to the YAML loader for .yaml/.yml files and to the
// flat line-oriented loader otherwise (spec.md §6.1).
func Load(filename string) (*Topology, error) {
	ext := filepath.Ext(filename)
	if ext == ".yaml" || ext == ".yml" {
		return LoadYAML(filename)
	}
	return LoadLinkFile(filename)
}

// LoadLinkFile loads the plain-text topology format of spec.md §6.1: one
// link per line, "BRIDGE_A PORT_A BRIDGE_B PORT_B". Blank lines and
// lines starting with "#" are ignored.
func LoadLinkFile(filename string) (*Topology, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("config: open topology file: %w", err)
	}
	defer f.Close()

	top := &Topology{}
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("config: line %d: expected 4 fields (BRIDGE_A PORT_A BRIDGE_B PORT_B), got %d", lineNum, len(fields))
		}

		portA, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("config: line %d: invalid port index %q: %w", lineNum, fields[1], err)
		}
		portB, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("config: line %d: invalid port index %q: %w", lineNum, fields[3], err)
		}

		top.Links = append(top.Links, LinkSpec{
			BridgeA: fields[0],
			PortA:   portA,
			BridgeB: fields[2],
			PortB:   portB,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: reading topology file: %w", err)
	}
	if len(top.Links) == 0 {
		return nil, fmt.Errorf("config: no links defined in %s", filename)
	}
	return top, nil
}

// LoadYAML loads a Topology from the richer YAML format of
// SPEC_FULL.md §6.2, which additionally carries per-bridge priority
// overrides that the flat link format has no room for.
func LoadYAML(filename string) (*Topology, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("config: read YAML topology: %w", err)
	}
	var top Topology
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("config: parse YAML topology: %w", err)
	}
	if len(top.Links) == 0 {
		return nil, fmt.Errorf("config: no links defined in %s", filename)
	}
	return &top, nil
}

// LoadYAMLBytes parses a Topology from in-memory YAML, for callers (the
// daemon's inline simulation-start request) that have config content
// rather than a file path.
func LoadYAMLBytes(data []byte) (*Topology, error) {
	var top Topology
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("config: parse YAML topology: %w", err)
	}
	if len(top.Links) == 0 {
		return nil, fmt.Errorf("config: no links defined in inline topology")
	}
	return &top, nil
}

// SaveYAML writes a Topology to a YAML file in the form LoadYAML reads.
func SaveYAML(filename string, top *Topology) error {
	data, err := yaml.Marshal(top)
	if err != nil {
		return fmt.Errorf("config: marshal YAML topology: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("config: write YAML topology: %w", err)
	}
	return nil
}

// Build constructs a live internal/stpcore.Topology from this file-level
// representation: bridges are created first (picking up any priority
// override), then links are wired in declaration order.
func (t *Topology) Build() (*stpcore.Topology, error) {
	top := stpcore.NewTopology(t.DefaultPriority)
	for _, b := range t.Bridges {
		top.AddBridge(b.MAC, b.Priority)
	}
	for _, link := range t.Links {
		if err := top.AddLink(link.BridgeA, link.PortA, link.BridgeB, link.PortB, link.PathCost); err != nil {
			return nil, fmt.Errorf("config: building topology: %w", err)
		}
	}
	return top, nil
}

// BridgePriority looks up a configured priority override for mac,
// returning (0, false) if none was specified.
func (t *Topology) BridgePriority(mac string) (uint16, bool) {
	for _, b := range t.Bridges {
		if b.MAC == mac {
			return b.Priority, b.Priority != 0
		}
	}
	return 0, false
}
