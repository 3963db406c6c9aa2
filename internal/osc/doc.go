// Package osc implements a zero-copy decoder for the Open Sound Control wire format.
// It handles padded strings, int32/float32 atoms, bundles of length-prefixed
// messages and bare messages through a single packet iteration interface.
package osc
