// Package transport talks to the sync authority on behalf of the client.
package transport

import (
	"context"

	"github.com/wh131462/stillalive/internal/protocol"
)

// API is the surface the sync manager needs from the authority.
type API interface {
	// Push uploads pending local changes and returns the authority's verdict.
	Push(ctx context.Context, req *protocol.PushRequest) (*protocol.PushResponse, error)
	// Pull downloads records modified on the authority after the watermark.
	Pull(ctx context.Context, req *protocol.PullRequest) (*protocol.PullResponse, error)
	// Probe checks whether the authority is reachable at all.
	Probe(ctx context.Context) error
}
