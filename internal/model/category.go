package model

import (
	"time"
)

type Category struct {
	ID        string    `db:"id"`   // 8-char opaque token, immutable
	Name      string    `db:"name"` // unique display name
	OwnerID   int64     `db:"owner_id"`
	Timer     *int64    `db:"timer"` // per-category deletion delay in seconds; nil = use global default, 0 = disabled
	CreatedAt time.Time `db:"created_at"`

	Files []File `db:"-"` // loaded separately, in upload order
}
