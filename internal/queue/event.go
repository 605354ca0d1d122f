// Package queue defines message payloads exchanged over the message broker,
// the publisher used by handlers and the background audit consumer.
package queue

// StockMovementEvent is published whenever a stock movement is recorded.
// It carries enough information for downstream consumers to log or alert
// without querying the primary database.
type StockMovementEvent struct {
    MovementID uint64 `json:"movement_id"`
    ItemID     uint64 `json:"item_id"`
    Reference  string `json:"reference"`
    Direction  string `json:"direction"`
    Quantity   int64  `json:"quantity"`
    NewOnHand  int64  `json:"new_on_hand"`
    Reason     string `json:"reason"`
    UserID     uint64 `json:"user_id"`
    RecordedAt string `json:"recorded_at"`
}

// OrderStatusEvent is published whenever an order changes status or
// advances a production stage.
type OrderStatusEvent struct {
    OrderID    uint64 `json:"order_id"`
    ClientName string `json:"client_name"`
    OldStatus  string `json:"old_status,omitempty"`
    NewStatus  string `json:"new_status"`
    Stage      string `json:"stage,omitempty"`
    UserID     uint64 `json:"user_id"`
    ChangedAt  string `json:"changed_at"`
}
