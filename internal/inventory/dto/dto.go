package dto

type InventoryFilters struct {
	WarehouseName string
	Barcode       string
	LowStock      bool // stock_qty <= stock_alert_level AND stock_alert_level > 0
	Page          int
	PageSize      int
}

type TransactionFilters struct {
	InventoryID     string
	TransactionType string
	Page            int
	PageSize        int
}

// Reconciliation compares the stored quantity with the ledger replay.
type Reconciliation struct {
	InventoryID string  `json:"inventoryId"`
	StockQty    float64 `json:"stockQty"`
	LedgerQty   float64 `json:"ledgerQty"`
	Consistent  bool    `json:"consistent"`
}
