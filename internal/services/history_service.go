package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codyseavey/textify/internal/errs"
	"github.com/codyseavey/textify/internal/metrics"
	"github.com/codyseavey/textify/internal/models"
	"github.com/codyseavey/textify/internal/repository"
)

// DefaultHistoryCap is the number of records kept per user.
const DefaultHistoryCap = 100

// SaveRequest is the input for HistoryService.Save.
type SaveRequest struct {
	Text           string
	TranslatedText string
	Source         string
	Target         string
}

// HistoryService is the per-user ledger of saved translations.
type HistoryService struct {
	history repository.HistoryRepository
	users   repository.UserRepository
	cap     int
	now     func() time.Time
	log     *zap.Logger
}

// NewHistoryService creates a ledger that keeps at most maxPerUser records per user.
func NewHistoryService(history repository.HistoryRepository, users repository.UserRepository, maxPerUser int, log *zap.Logger) *HistoryService {
	if maxPerUser <= 0 {
		maxPerUser = DefaultHistoryCap
	}
	return &HistoryService{history: history, users: users, cap: maxPerUser, now: time.Now, log: log}
}

// Save appends a record for userID, evicting the oldest beyond the cap.
// Returns errs.ErrNotFound if the user no longer exists.
func (s *HistoryService) Save(ctx context.Context, userID string, req SaveRequest) (*models.TranslationRecord, error) {
	text := strings.TrimSpace(req.Text)
	translated := strings.TrimSpace(req.TranslatedText)
	if text == "" || translated == "" || strings.TrimSpace(req.Source) == "" || strings.TrimSpace(req.Target) == "" {
		return nil, fmt.Errorf("%w: text, translatedText, source and target are required", errs.ErrValidation)
	}
	source, err := parseLang(req.Source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	target, err := parseLang(req.Target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("user %q: %w", userID, errs.ErrNotFound)
		}
		return nil, err
	}

	rec := &models.TranslationRecord{
		ID:             uuid.NewString(),
		UserID:         userID,
		Text:           text,
		TranslatedText: translated,
		Source:         source,
		Target:         target,
		CreatedAt:      s.now(),
	}
	if err := s.history.Append(ctx, rec, s.cap); err != nil {
		return nil, err
	}

	s.log.Debug("history record saved", zap.String("user_id", userID), zap.String("record_id", rec.ID))
	metrics.UpdateStoreMetrics(ctx, nil, s.history, s.log)
	return rec, nil
}

// List returns the user's records, newest first. Never nil.
func (s *HistoryService) List(ctx context.Context, userID string) ([]models.TranslationRecord, error) {
	list, err := s.history.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.TranslationRecord{}
	}
	return list, nil
}

// Delete removes one record. A missing record and a record owned by someone else
// both return errs.ErrNotFound.
func (s *HistoryService) Delete(ctx context.Context, userID, recordID string) error {
	if strings.TrimSpace(recordID) == "" {
		return fmt.Errorf("%w: record id is required", errs.ErrValidation)
	}

	deleted, err := s.history.Delete(ctx, recordID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("history record %q: %w", recordID, errs.ErrNotFound)
	}

	metrics.UpdateStoreMetrics(ctx, nil, s.history, s.log)
	return nil
}

// Clear removes all of the user's records. Clearing an empty history is not an error.
func (s *HistoryService) Clear(ctx context.Context, userID string) error {
	if err := s.history.Clear(ctx, userID); err != nil {
		return err
	}
	metrics.UpdateStoreMetrics(ctx, nil, s.history, s.log)
	return nil
}
