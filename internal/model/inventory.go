package model

import "time"

type TransactionType string

const (
	TransactionReceive    TransactionType = "receive"
	TransactionIssue      TransactionType = "issue"
	TransactionTransfer   TransactionType = "transfer"
	TransactionAdjustment TransactionType = "adjustment"
)

// InventoryRecord is the stock of one item (barcode) in one warehouse.
// StockQty is signed and may go negative when negative issues are allowed.
type InventoryRecord struct {
	ID              string     `db:"id" json:"id"`
	Barcode         string     `db:"barcode" json:"barcode"`
	ItemName        string     `db:"item_name" json:"itemName"`
	WarehouseName   string     `db:"warehouse_name" json:"warehouseName"`
	StockQty        float64    `db:"stock_qty" json:"stockQty"`
	StockAlertLevel float64    `db:"stock_alert_level" json:"stockAlertLevel"` // 0 disables low-stock alerts
	ExpireDate      *time.Time `db:"expire_date" json:"expireDate,omitempty"`
	ExpireDateAlert int        `db:"expire_date_alert" json:"expireDateAlert"` // days before expiry, 0 disables
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// IsLowStock reports whether the record sits at or below its alert level.
func (r *InventoryRecord) IsLowStock() bool {
	return r.StockAlertLevel > 0 && r.StockQty <= r.StockAlertLevel
}

// ExpiresWithin reports whether the expiry date is inside the record's alert
// window as seen from now. Already expired records are inside the window.
func (r *InventoryRecord) ExpiresWithin(now time.Time) bool {
	if r.ExpireDate == nil || r.ExpireDateAlert <= 0 {
		return false
	}
	windowStart := r.ExpireDate.AddDate(0, 0, -r.ExpireDateAlert)
	return !now.Before(windowStart)
}

func (r *InventoryRecord) IsExpired(now time.Time) bool {
	return r.ExpireDate != nil && !now.Before(*r.ExpireDate)
}

// StockTransaction is an immutable ledger row. Quantity is always a positive
// magnitude; the direction follows from the type and the before/after pair.
type StockTransaction struct {
	ID              string          `db:"id" json:"id"`
	InventoryID     string          `db:"inventory_id" json:"inventoryId"`
	TransactionType TransactionType `db:"transaction_type" json:"transactionType"`
	Quantity        float64         `db:"quantity" json:"quantity"`
	QuantityBefore  float64         `db:"quantity_before" json:"quantityBefore"`
	QuantityAfter   float64         `db:"quantity_after" json:"quantityAfter"`
	TransactionDate time.Time       `db:"transaction_date" json:"transactionDate"`
	ReferenceDoc    string          `db:"reference_doc" json:"referenceDoc"`
	Reason          string          `db:"reason" json:"reason"`
	ProcessedBy     string          `db:"processed_by" json:"processedBy"`
}

// Delta is the signed change this row applied to the record.
func (t *StockTransaction) Delta() float64 {
	return t.QuantityAfter - t.QuantityBefore
}
