package database

import "time"

// Document is one row of the documents table: a JSON value under a key.
type Document struct {
	Key       string     `gorm:"column:doc_key;primaryKey"`
	Value     []byte     `gorm:"column:doc_value;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

// TableName pins the table created by migration 000001.
func (Document) TableName() string { return "documents" }

func (d *Document) expired(now time.Time) bool {
	return d.ExpiresAt != nil && !now.Before(*d.ExpiresAt)
}
