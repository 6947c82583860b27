// Package notifications publishes decision events over Redis and fans them out
// to staff websocket connections.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"bagportal/internal/observability"

	"github.com/redis/go-redis/v9"
)

// DecisionChannel is the Redis channel carrying decision events.
const DecisionChannel = "bagportal:decisions"

// EventBagRequestDecided is the type of a DecisionEvent.
const EventBagRequestDecided = "bag_request.decided"

// DecisionEvent announces a committed staff decision.
type DecisionEvent struct {
	Type           string    `json:"type"`
	RequestID      uint      `json:"request_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status"`
	ReviewerID     uint      `json:"reviewer_id"`
	SectorID       uint      `json:"sector_id,omitempty"`
	DecidedAt      time.Time `json:"decided_at"`
}

// Notifier publishes events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishDecision sends ev to DecisionChannel.
func (n *Notifier) PublishDecision(ctx context.Context, ev DecisionEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.Type == "" {
		ev.Type = EventBagRequestDecided
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal decision event: %w", err)
	}
	return n.rdb.Publish(ctx, DecisionChannel, payload).Err()
}

// StartDecisionSubscriber subscribes to DecisionChannel and calls onMessage for each
// payload until ctx is cancelled.
func (n *Notifier) StartDecisionSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, DecisionChannel)
	// Wait for the subscription to be confirmed so no early publish is lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", DecisionChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							observability.Logger.Error("Panic in decision subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
