package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sproutly/sproutly-backend/internal/logger"
)

// ApprovalEvent is what the external approval workflow publishes when a
// parent approves a submission. Delivery is at least once and unordered; the
// consumer dedupes by SubmissionID.
type ApprovalEvent struct {
	EventID      string    `json:"event_id"`
	ChildID      uuid.UUID `json:"child_id"`
	Points       int64     `json:"points"`
	SubmissionID uuid.UUID `json:"submission_id"`
	ChoreTitle   string    `json:"chore_title,omitempty"`
}

// ApprovalFeed consumes the realtime transport's approval channel. The core
// does not implement the transport; it only reacts to being told something
// changed.
type ApprovalFeed interface {
	StartForwarder(ctx context.Context, onEvent func(ev ApprovalEvent)) error
	Close() error
}

type approvalFeed struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewApprovalFeed(log *logger.Logger, rdb *goredis.Client) (ApprovalFeed, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}

	ch := strings.TrimSpace(os.Getenv("REDIS_APPROVAL_CHANNEL"))
	if ch == "" {
		ch = "chore.approvals"
	}

	return &approvalFeed{
		log:     log.With("service", "RedisApprovalFeed"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (f *approvalFeed) StartForwarder(ctx context.Context, onEvent func(ev ApprovalEvent)) error {
	if f == nil || f.rdb == nil {
		return fmt.Errorf("approval feed not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := f.rdb.Subscribe(ctx, f.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var ev ApprovalEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					f.log.Warn("bad approval payload", "error", err)
					continue
				}
				if ev.ChildID == uuid.Nil || ev.SubmissionID == uuid.Nil {
					f.log.Warn("approval payload missing ids", "event_id", ev.EventID)
					continue
				}
				onEvent(ev)
			}
		}
	}()

	return nil
}

func (f *approvalFeed) Close() error {
	if f == nil || f.rdb == nil {
		return nil
	}
	return f.rdb.Close()
}
