package model

import "time"

const (
	SettingPreventNegativeIssue = "prevent_negative_issue"
	SettingAlertRecipients      = "alert_recipients"
)

// AppSetting stores one JSON-encoded value per key.
type AppSetting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
