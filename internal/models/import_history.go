package models

import "time"

// ImportHistory is the audit record written for every bulk import attempt,
// including attempts where every row failed.
type ImportHistory struct {
	Base
	UserID        string    `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID     *string   `gorm:"type:uuid" json:"account_id,omitempty"`
	FileName      string    `json:"file_name"`
	TotalRecords  int       `gorm:"not null" json:"total_records"`
	SuccessCount  int       `gorm:"not null" json:"success_count"`
	ErrorCount    int       `gorm:"not null" json:"error_count"`
	InsertedCount int       `gorm:"not null" json:"inserted_count"`
	Errors        string    `gorm:"type:text" json:"errors"`
	ImportedAt    time.Time `gorm:"not null;index" json:"imported_at"`
}
