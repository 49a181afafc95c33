package app

import (
	"context"
	"testing"

	redisclient "github.com/sproutly/sproutly-backend/internal/clients/redis"
)

type stubFeed struct {
	ctx    context.Context
	closed bool
}

func (f *stubFeed) StartForwarder(ctx context.Context, onEvent func(ev redisclient.ApprovalEvent)) error {
	f.ctx = ctx
	return nil
}

func (f *stubFeed) Close() error {
	f.closed = true
	return nil
}

func TestCloseStopsApprovalFeed(t *testing.T) {
	feed := &stubFeed{}
	a := &App{approvalFeed: feed}

	a.Start()
	if feed.ctx == nil {
		t.Fatal("forwarder never started")
	}
	if feed.ctx.Err() != nil {
		t.Fatal("forwarder context cancelled before Close")
	}

	a.Close()
	if feed.ctx.Err() == nil {
		t.Error("forwarder context still live after Close")
	}
	if !feed.closed {
		t.Error("feed connection left open after Close")
	}

	// Close is safe to call again.
	a.Close()
}
