package queue

// The audit consumer listens to both domain queues and appends one line per
// event to logs/audit.log. It runs a reconnect loop with capped backoff and
// only stops when the process does; poison messages are rejected without
// requeue so the loop cannot spin on them.

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartAuditConsumer connects to RabbitMQ, declares the stock.movement and
// order.status_changed queues (durable), and consumes both into the audit
// log. Intended to run in its own goroutine from main.
func StartAuditConsumer() error {
    url := brokerURL()

    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("audit-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn); err != nil {
            log.Printf("audit-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
            continue
        }
    }
}

func consumeLoop(conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("audit-consumer: set QoS failed: %v", err)
    }

    for _, name := range []string{stockQueueName, orderQueueName} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
    }

    stockMsgs, err := ch.Consume(stockQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", stockQueueName, err)
    }
    orderMsgs, err := ch.Consume(orderQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", orderQueueName, err)
    }

    for {
        select {
        case d, ok := <-stockMsgs:
            if !ok {
                return errors.New("stock deliveries channel closed")
            }
            ackOrReject(d, handleStockMessage(d.Body))
        case d, ok := <-orderMsgs:
            if !ok {
                return errors.New("order deliveries channel closed")
            }
            ackOrReject(d, handleOrderMessage(d.Body))
        }
    }
}

func ackOrReject(d amqp.Delivery, err error) {
    if err != nil {
        log.Printf("audit-consumer: handle message failed: %v", err)
        _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
        return
    }
    _ = d.Ack(false)
}

func handleStockMessage(body []byte) error {
    var ev StockMovementEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := fmt.Sprintf("[%s] Stock movement | movement_id=%d | item_id=%d | ref=%q | %s %d | on_hand=%d | user_id=%d | reason=%q\n",
        ev.RecordedAt, ev.MovementID, ev.ItemID, ev.Reference, ev.Direction, ev.Quantity, ev.NewOnHand, ev.UserID, ev.Reason)
    return appendAuditLine(line)
}

func handleOrderMessage(body []byte) error {
    var ev OrderStatusEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := fmt.Sprintf("[%s] Order status | order_id=%d | client=%q | %s -> %s | stage=%q | user_id=%d\n",
        ev.ChangedAt, ev.OrderID, ev.ClientName, ev.OldStatus, ev.NewStatus, ev.Stage, ev.UserID)
    return appendAuditLine(line)
}

func appendAuditLine(line string) error {
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join("logs", "audit.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
