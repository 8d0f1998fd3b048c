package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/codyseavey/textify/internal/errs"
	"github.com/codyseavey/textify/internal/models"
)

// SQLUsers is a gorm-backed UserRepository.
type SQLUsers struct {
	db *gorm.DB
}

// NewSQLUsers creates a user repository over an already migrated database.
func NewSQLUsers(db *gorm.DB) *SQLUsers {
	return &SQLUsers{db: db}
}

// Create inserts the user inside a transaction so the duplicate check and the insert
// see the same snapshot. The unique index on username is the final guard.
func (r *SQLUsers) Create(ctx context.Context, u *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", u.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errs.ErrAlreadyExists
		}
		return tx.Create(u).Error
	})
	if errors.Is(err, errs.ErrAlreadyExists) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("username %q: %w", u.Username, errs.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *SQLUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *SQLUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *SQLUsers) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

func (r *SQLUsers) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

// SQLHistory is a gorm-backed HistoryRepository.
// Ordering uses created_at and falls back to rowid for records created in the same instant.
type SQLHistory struct {
	db *gorm.DB
}

// NewSQLHistory creates a history repository over an already migrated database.
func NewSQLHistory(db *gorm.DB) *SQLHistory {
	return &SQLHistory{db: db}
}

const newestFirst = "created_at DESC, rowid DESC"

func (r *SQLHistory) Append(ctx context.Context, rec *models.TranslationRecord, maxPerUser int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		if maxPerUser <= 0 {
			return nil
		}

		keep := tx.Model(&models.TranslationRecord{}).
			Select("id").
			Where("user_id = ?", rec.UserID).
			Order(newestFirst).
			Limit(maxPerUser)

		return tx.Where("user_id = ? AND id NOT IN (?)", rec.UserID, keep).
			Delete(&models.TranslationRecord{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (r *SQLHistory) List(ctx context.Context, userID string) ([]models.TranslationRecord, error) {
	var out []models.TranslationRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(newestFirst).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return out, nil
}

func (r *SQLHistory) Delete(ctx context.Context, id, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.TranslationRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete history record: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *SQLHistory) Clear(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.TranslationRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (r *SQLHistory) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.TranslationRecord{}).Count(&n).Error
	return n, err
}
