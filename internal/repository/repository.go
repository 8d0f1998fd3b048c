// Package repository defines storage interfaces for users and translation history,
// with an in-memory and a SQLite (gorm) backend for each.
package repository

import (
	"context"

	"github.com/codyseavey/textify/internal/models"
)

// UserRepository stores registered users.
type UserRepository interface {
	// Create persists a new user. Returns errs.ErrAlreadyExists if the username is taken.
	Create(ctx context.Context, u *models.User) error
	// GetByUsername loads a user by username. Returns errs.ErrNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByID loads a user by ID. Returns errs.ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Count returns the number of registered users.
	Count(ctx context.Context) (int64, error)
}

// HistoryRepository stores per-user translation records.
type HistoryRepository interface {
	// Append stores rec and trims the owner's history to the newest maxPerUser records.
	Append(ctx context.Context, rec *models.TranslationRecord, maxPerUser int) error
	// List returns the user's records, newest first.
	List(ctx context.Context, userID string) ([]models.TranslationRecord, error)
	// Delete removes the record only if it is owned by userID. Reports whether it did.
	Delete(ctx context.Context, id, userID string) (bool, error)
	// Clear removes every record owned by userID.
	Clear(ctx context.Context, userID string) error
	// Count returns the total number of stored records across all users.
	Count(ctx context.Context) (int64, error)
}
