// Package server exposes the control surface and the WebSocket display.
package server

import "time"

// Server configuration constants
const (
	// Per-connection inbound control message rate limiting
	RateLimitMessages = 10
	RateLimitWindow   = time.Second

	// Display update queue between the polling goroutine and the broadcaster
	UpdateQueueDepth = 256

	// Per-client write deadline for broadcasts
	BroadcastWriteTimeout = 5 * time.Second
)
