package rdb

import "time"

// CommandHistoryRecord is the RDB persistence model for model.HistoryEntry.
// Table name: dotty_commands
type CommandHistoryRecord struct {
	ID             string    `gorm:"primaryKey;type:text;not null"`
	UserID         string    `gorm:"type:text;not null;index:idx_user_domain_created,priority:1"`
	Domain         string    `gorm:"type:text;not null;index:idx_user_domain_created,priority:2"`
	Command        string    `gorm:"type:text;not null"`
	Interpretation string    `gorm:"type:text"`
	Actions        string    `gorm:"type:text"` // JSON encoded []model.Action
	Results        string    `gorm:"type:text"` // JSON encoded []model.ExecutionResult
	CreatedAt      time.Time `gorm:"not null;index:idx_user_domain_created,priority:3"`
}

func (CommandHistoryRecord) TableName() string { return "dotty_commands" }
