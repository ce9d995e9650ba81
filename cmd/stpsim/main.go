// Package main provides the stpsim command-line interface for simulating
// IEEE 802.1D spanning-tree convergence over a defined bridge topology.
package main

func main() {
	Execute()
}
