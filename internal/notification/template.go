package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/model"
)

var alertTemplate = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2 style="margin-bottom: 4px;">{{.Title}}</h2>
  <p style="margin-top: 0;"><strong>Priority:</strong> <span style="color: {{.PriorityColor}};">{{.Priority}}</span></p>
  <table cellpadding="4" style="border-collapse: collapse;">
    <tr><td><strong>Item</strong></td><td>{{.ItemName}} ({{.Barcode}})</td></tr>
    <tr><td><strong>Warehouse</strong></td><td>{{.Warehouse}}</td></tr>
  </table>
  <p>{{.Message}}</p>
  <p style="font-size: 12px; color: #777;">{{.Timestamp}}</p>
</body>
</html>
`))

type alertView struct {
	Title         string
	Priority      string
	PriorityColor string
	ItemName      string
	Barcode       string
	Warehouse     string
	Message       string
	Timestamp     string
}

// RenderAlert renders the alert e-mail and returns its subject and HTML body.
// rec may be nil for alerts not tied to a record.
func RenderAlert(a *model.AlertLog, rec *model.InventoryRecord) (string, string, error) {
	view := alertView{
		Title:         alertTitle(a.AlertType),
		Priority:      strings.ToUpper(string(a.PriorityLevel)),
		PriorityColor: priorityColor(a.PriorityLevel),
		Message:       a.Message,
		Timestamp:     a.CreatedAt.UTC().Format(time.RFC1123),
	}
	if rec != nil {
		view.ItemName = rec.ItemName
		view.Barcode = rec.Barcode
		view.Warehouse = rec.WarehouseName
	}

	var buf bytes.Buffer
	if err := alertTemplate.Execute(&buf, view); err != nil {
		return "", "", fmt.Errorf("render alert: %w", err)
	}

	subject := fmt.Sprintf("[%s] %s", view.Priority, view.Title)
	if rec != nil {
		subject += ": " + rec.ItemName + " @ " + rec.WarehouseName
	}
	return subject, buf.String(), nil
}

func alertTitle(t model.AlertType) string {
	switch t {
	case model.AlertLowStock:
		return "Low stock alert"
	case model.AlertNegativeStock:
		return "Negative stock alert"
	case model.AlertExpiring:
		return "Expiry alert"
	}
	return "Inventory alert"
}

func priorityColor(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "#c0392b"
	case model.PriorityMedium:
		return "#e67e22"
	}
	return "#2980b9"
}
