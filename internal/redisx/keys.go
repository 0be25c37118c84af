package redisx

import "time"

const (
	// Idempotency for checkout: idem:checkout:{buyer_id}:{key} -> order_id
	KeyIdemCheckout = "idem:checkout:%s:%s"

	// Cache order status: order_status:{order_id} -> {"is_completed": ...}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Notification feed per user: notif:{user_id} -> list of JSON entries
	KeyNotifications = "notif:%s"
)

var (
	TTLIdempotency   = 24 * time.Hour
	TTLStatusCache   = 5 * time.Minute
	TTLDedup         = 48 * time.Hour
	TTLNotifications = 7 * 24 * time.Hour

	// Feeds are capped; old entries fall off the end.
	NotificationFeedMax int64 = 100
)
