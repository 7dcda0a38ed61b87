package models

import "time"

// RatelimitConfig stores a ulule-formatted rate such as "5-S" or "100-M".
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	UpdatedAt time.Time `json:"updated_at"`
}
