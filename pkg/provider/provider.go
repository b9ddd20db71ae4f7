// Package provider contains the transports a client dispatches JSON-RPC
// requests through. A provider only moves one request and one response;
// middleware ordering and retries live above it in the request manager.
package provider

import (
	"context"
	"encoding/json"
)

// Provider is the transport contract consumed by the request manager.
type Provider interface {
	// Call performs a single JSON-RPC request and returns the raw result.
	Call(ctx context.Context, method string, params []any) (json.RawMessage, error)

	// IsConnected probes the endpoint. Probe failure is reported as false,
	// never as an error; connectivity is advisory.
	IsConnected(ctx context.Context) bool

	// Close releases the underlying connection.
	Close() error
}

// probeMethod is the cheap request used for connectivity probes.
const probeMethod = "web3_clientVersion"
