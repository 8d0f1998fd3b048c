package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codyseavey/textify/internal/models"
)

// legacyUser is one entry of the flat users.json file written by the earlier
// file-backed server, which embedded each user's history in the user object.
type legacyUser struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Password string          `json:"password"` // already a bcrypt hash
	History  []legacyHistory `json:"history"`
}

type legacyHistory struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	TranslatedText string `json:"translatedText"`
	Source         string `json:"source"`
	Target         string `json:"target"`
	TS             int64  `json:"ts"` // unix millis
}

// ImportResult summarizes a legacy import.
type ImportResult struct {
	UsersImported   int
	UsersSkipped    int
	RecordsImported int
}

// ImportLegacyUsers copies users and their embedded history from a legacy users.json
// into the database. Safe to run on every start: users whose id or username already
// exist are skipped. At most historyCap records per user are kept, newest first.
func ImportLegacyUsers(db *gorm.DB, path string, historyCap int, log *zap.Logger) (ImportResult, error) {
	var result ImportResult

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info("legacy users file not found, nothing to import", zap.String("path", path))
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to read legacy users file: %w", err)
	}
	if len(raw) == 0 {
		return result, nil
	}

	var users []legacyUser
	if err := json.Unmarshal(raw, &users); err != nil {
		return result, fmt.Errorf("failed to parse legacy users file: %w", err)
	}

	for _, lu := range users {
		if lu.ID == "" || lu.Username == "" || lu.Password == "" {
			result.UsersSkipped++
			continue
		}

		imported, records, err := importLegacyUser(db, lu, historyCap)
		if err != nil {
			return result, err
		}
		if !imported {
			result.UsersSkipped++
			continue
		}
		result.UsersImported++
		result.RecordsImported += records
	}

	log.Info("legacy users import complete",
		zap.String("path", path),
		zap.Int("users_imported", result.UsersImported),
		zap.Int("users_skipped", result.UsersSkipped),
		zap.Int("records_imported", result.RecordsImported),
	)
	return result, nil
}

func importLegacyUser(db *gorm.DB, lu legacyUser, historyCap int) (bool, int, error) {
	imported := false
	records := 0

	err := db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).
			Where("id = ? OR username = ?", lu.ID, lu.Username).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		user := models.User{ID: lu.ID, Username: lu.Username, PasswordHash: lu.Password}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		history := lu.History
		sort.SliceStable(history, func(i, j int) bool { return history[i].TS > history[j].TS })
		if historyCap > 0 && len(history) > historyCap {
			history = history[:historyCap]
		}

		// Insert oldest first so rowid order matches creation order.
		for i := len(history) - 1; i >= 0; i-- {
			h := history[i]
			if h.ID == "" || h.Text == "" || h.TranslatedText == "" {
				continue
			}
			rec := models.TranslationRecord{
				ID:             h.ID,
				UserID:         user.ID,
				Text:           h.Text,
				TranslatedText: h.TranslatedText,
				Source:         h.Source,
				Target:         h.Target,
				CreatedAt:      time.UnixMilli(h.TS),
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			records++
		}

		imported = true
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("failed to import legacy user %q: %w", lu.Username, err)
	}
	return imported, records, nil
}
