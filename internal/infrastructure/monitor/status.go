package monitor

import "time"

type Status struct {
	Storage       bool      `json:"storage"`
	StorageDriver string    `json:"storage_driver"`
	Redis         bool      `json:"redis"`
	RedisEnabled  bool      `json:"redis_enabled"`
	LastCheck     time.Time `json:"last_check"`

	Details map[string]interface{} `json:"details,omitempty"`
}

// Healthy reports whether every configured dependency answered the last probe.
func (s Status) Healthy() bool {
	return s.Storage && (!s.RedisEnabled || s.Redis)
}
