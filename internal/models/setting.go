package models

import "time"

// Setting maps to the `dashboard_settings` key/value table.
type Setting struct {
	Key       string    `gorm:"column:setting_key;primaryKey;size:191" json:"key"`
	Value     string    `gorm:"column:setting_value;type:text" json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Setting) TableName() string {
	return "dashboard_settings"
}
