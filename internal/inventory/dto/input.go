package dto

import (
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/model"
)

// StockMovementInput is a receive or issue request.
type StockMovementInput struct {
	Barcode       string
	WarehouseName string
	Quantity      float64
	ReferenceDoc  string
	Reason        string
	UserID        string
}

type TransferInput struct {
	Barcode       string
	FromWarehouse string
	ToWarehouse   string
	Quantity      float64
	ReferenceDoc  string
	Reason        string
	UserID        string
}

// AdjustInput corrects a record by a signed delta.
type AdjustInput struct {
	Barcode       string
	WarehouseName string
	Delta         float64
	ReferenceDoc  string
	Reason        string
	UserID        string
}

type RegisterRecordInput struct {
	Barcode         string
	ItemName        string
	WarehouseName   string
	OpeningQty      float64
	StockAlertLevel float64
	ExpireDate      *time.Time
	ExpireDateAlert int
	UserID          string
}

// Movement is one conditional quantity change plus its ledger row.
// GuardNegative makes the update apply only if the result stays >= 0.
type Movement struct {
	InventoryID   string
	Type          model.TransactionType
	Delta         float64
	GuardNegative bool
	ReferenceDoc  string
	Reason        string
	ProcessedBy   string
	At            time.Time
}
