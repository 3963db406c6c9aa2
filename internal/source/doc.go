// Package source tracks the remote peers sending OSC datagrams.
// Each peer gets a Source with packet, error and key counters; peers that
// stay silent longer than the configured timeout are dropped.
package source
