package model

// Settings is the singleton global configuration row.
type Settings struct {
	ID           int64 `db:"id"`
	DefaultTimer int64 `db:"default_timer"` // seconds before auto-deletion; 0 = disabled
}
