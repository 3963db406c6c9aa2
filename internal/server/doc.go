// Package server implements the UDP server that receives OSC datagrams and the
// HTTP API used for health checks, statistics and Prometheus scraping.
package server
