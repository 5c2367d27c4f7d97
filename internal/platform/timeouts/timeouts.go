// Package timeouts defines shared timeout constants used across the service.
// Centralizing these values prevents drift between call sites and makes the
// durations discoverable.
package timeouts

import "time"

// GatewayRequest caps the time allowed for a single call from the dashboard
// to the ledger JSON gateway.
const GatewayRequest = 10 * time.Second

// GatewayProbe caps a single discovery probe (ledger id or package id).
// Probes are expected to fail fast; a long timeout here multiplies across
// the whole candidate list.
const GatewayProbe = 3 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
