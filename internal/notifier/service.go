package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/campuskart/api/internal/kafka"
	"github.com/campuskart/api/internal/market"
	"github.com/campuskart/api/internal/redisx"
)

// Notification is one entry in a user's feed.
type Notification struct {
	Type    string    `json:"type"`
	OrderID string    `json:"order_id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

const (
	TypeDeliveryRequested = "delivery_requested"
	TypeOrderCompleted    = "order_completed"
	TypeOrderRemoved      = "order_removed"
)

// Service turns order lifecycle events into per-user feeds in redis.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderEvent is installed as the consumer handler for every order
// topic the notifier subscribes to.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup by event_id so redelivered messages do not double-notify
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case market.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[market.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.notifySellers(ctx, p, env.OccurredAt)
	case market.EventOrderCompleted:
		p, err := kafkax.UnwrapPayload[market.OrderCompletedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.push(ctx, p.BuyerID, Notification{
			Type:    TypeOrderCompleted,
			OrderID: p.OrderID,
			Message: "all items of your order have been handed over",
			At:      env.OccurredAt,
		})
	case market.EventOrderRemoved:
		p, err := kafkax.UnwrapPayload[market.OrderRemovedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.push(ctx, p.BuyerID, Notification{
			Type:    TypeOrderRemoved,
			OrderID: p.OrderID,
			Message: "your order was removed: " + p.Reason,
			At:      env.OccurredAt,
		})
	}
	return nil // unknown events are ignored
}

func (s *Service) notifySellers(ctx context.Context, p market.OrderCreatedPayload, at time.Time) error {
	seen := map[string]bool{}
	for _, l := range p.Lines {
		if seen[l.SellerID] {
			continue
		}
		seen[l.SellerID] = true
		n := Notification{
			Type:    TypeDeliveryRequested,
			OrderID: p.OrderID,
			Message: "a buyer ordered one of your items; await the handoff code",
			At:      at,
		}
		if err := s.push(ctx, l.SellerID, n); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) push(ctx context.Context, userID string, n Notification) error {
	key := fmt.Sprintf(redisx.KeyNotifications, userID)
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	pipe := s.Redis.TxPipeline()
	pipe.LPush(ctx, key, b)
	pipe.LTrim(ctx, key, 0, redisx.NotificationFeedMax-1)
	pipe.Expire(ctx, key, redisx.TTLNotifications)
	_, err = pipe.Exec(ctx)
	return err
}

// Feed returns the newest-first notification feed for a user.
func Feed(ctx context.Context, rdb *redis.Client, userID string) ([]Notification, error) {
	key := fmt.Sprintf(redisx.KeyNotifications, userID)
	raw, err := rdb.LRange(ctx, key, 0, redisx.NotificationFeedMax-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Notification, 0, len(raw))
	for _, r := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(r), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
