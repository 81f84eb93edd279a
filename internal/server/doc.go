// Package server wires the HTTP and WebSocket surface: the order API,
// the subscriber endpoint feeding the hub, and health/metrics endpoints.
package server
