package model

import "time"

// Movement directions for stock entries.
const (
    MovementIn  = "entree"
    MovementOut = "sortie"
)

// StockItem mirrors the `stock_items` table: one material reference
// (blank shirts, inks, transfer film...) with its current quantity.
// Quantity is maintained by movements and must never go negative.
type StockItem struct {
    ID        uint64    // stock_items.id
    Reference string    // stock_items.reference (unique SKU-like code)
    Label     string    // stock_items.label
    Unit      string    // stock_items.unit (piece, litre, metre)
    Quantity  int64     // stock_items.quantity
    CreatedAt time.Time // stock_items.created_at
    UpdatedAt time.Time // stock_items.updated_at
}

// StockMovement mirrors the `stock_movements` table.  Every change to an
// item's quantity is recorded as an immutable movement row so the history
// can be audited.
type StockMovement struct {
    ID        uint64    // stock_movements.id
    ItemID    uint64    // stock_movements.item_id
    Direction string    // stock_movements.direction (entree|sortie)
    Quantity  int64     // stock_movements.quantity (always positive)
    Reason    string    // stock_movements.reason (free text)
    CreatedBy uint64    // stock_movements.created_by (users.id)
    CreatedAt time.Time // stock_movements.created_at
}
