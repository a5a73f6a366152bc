package dto

type AlertFilters struct {
	Acknowledged *bool
	AlertType    string
	InventoryID  string
	Page         int
	PageSize     int
}
