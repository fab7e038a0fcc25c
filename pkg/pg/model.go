package pg

import (
	"time"
)

// Model is embedded by every entity that owns an auto-increment id and audit timestamps.
type Model struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}
