package models

import (
	"encoding/json"
	"time"
)

// TranslationRecord is one saved entry in a user's history.
// Records are owned by exactly one user and ordered newest first.
type TranslationRecord struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         string    `gorm:"not null;size:36;index:idx_history_user_created,priority:1" json:"userId"`
	Text           string    `gorm:"not null" json:"text"`
	TranslatedText string    `gorm:"not null" json:"translatedText"`
	Source         string    `gorm:"not null;size:10" json:"source"`
	Target         string    `gorm:"not null;size:10" json:"target"`
	CreatedAt      time.Time `gorm:"index:idx_history_user_created,priority:2" json:"createdAt"`
}

func (TranslationRecord) TableName() string {
	return "translation_records"
}

// MarshalJSON adds "timestamp" (unix milliseconds), which browser clients sort and format by.
func (r TranslationRecord) MarshalJSON() ([]byte, error) {
	type record TranslationRecord
	return json.Marshal(struct {
		record
		Timestamp int64 `json:"timestamp"`
	}{record(r), r.CreatedAt.UnixMilli()})
}
