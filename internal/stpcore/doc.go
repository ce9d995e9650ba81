// Package stpcore implements the discrete-event core of an IEEE 802.1D
// Spanning Tree Protocol simulation: bridges, ports, BPDUs, and the
// topology that steps them one tick at a time until the network
// converges on a loop-free spanning tree.
package stpcore
