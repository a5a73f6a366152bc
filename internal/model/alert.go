package model

import "time"

type AlertType string

const (
	AlertLowStock      AlertType = "low_stock"
	AlertNegativeStock AlertType = "negative_stock"
	AlertExpiring      AlertType = "expiring"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type AlertLog struct {
	ID             string     `db:"id" json:"id"`
	AlertType      AlertType  `db:"alert_type" json:"alertType"`
	PriorityLevel  Priority   `db:"priority_level" json:"priorityLevel"`
	Message        string     `db:"message" json:"message"`
	InventoryID    *string    `db:"inventory_id" json:"inventoryId,omitempty"`
	Acknowledged   bool       `db:"acknowledged" json:"acknowledged"`
	AcknowledgedBy *string    `db:"acknowledged_by" json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time `db:"acknowledged_at" json:"acknowledgedAt,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}
