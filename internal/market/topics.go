package market

const (
	TopicOrderCreated   = "order.created"
	TopicOrderCompleted = "order.completed"
	TopicOrderRemoved   = "order.removed"
)

// Partition key = order_id, so all events for one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
