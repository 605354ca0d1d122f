package model

import "time"

// Order statuses follow the workshop's lifecycle. Transitions are
// enforced in the repository: recue -> en_production -> terminee ->
// livree, and annulee is reachable from any state except livree.
const (
    OrderStatusReceived   = "recue"
    OrderStatusInProgress = "en_production"
    OrderStatusDone       = "terminee"
    OrderStatusDelivered  = "livree"
    OrderStatusCancelled  = "annulee"
)

// Production stages for an order that is en_production.
const (
    StagePrinting  = "impression"
    StageDrying    = "sechage"
    StageControl   = "controle"
    StagePackaging = "emballage"
)

// Order mirrors the `orders` table: one serigraphy job for a client.
type Order struct {
    ID          uint64    // orders.id
    ClientName  string    // orders.client_name
    Description string    // orders.description
    Quantity    int       // orders.quantity
    UnitCents   int64     // orders.unit_cents (price per item)
    Status      string    // orders.status
    Stage       string    // orders.stage (only meaningful while en_production)
    DueDate     time.Time // orders.due_date
    CreatedBy   uint64    // orders.created_by (users.id)
    CreatedAt   time.Time // orders.created_at
    UpdatedAt   time.Time // orders.updated_at
}
