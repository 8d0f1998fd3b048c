package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/codyseavey/textify/internal/errs"
	"github.com/codyseavey/textify/internal/models"
)

// MemoryUsers is a process-local UserRepository.
type MemoryUsers struct {
	mu         sync.RWMutex
	byID       map[string]*models.User
	byUsername map[string]*models.User
}

// NewMemoryUsers creates an empty in-memory user repository.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		byID:       make(map[string]*models.User),
		byUsername: make(map[string]*models.User),
	}
}

func (r *MemoryUsers) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[u.Username]; ok {
		return fmt.Errorf("username %q: %w", u.Username, errs.ErrAlreadyExists)
	}
	if _, ok := r.byID[u.ID]; ok {
		return fmt.Errorf("user id %q: %w", u.ID, errs.ErrAlreadyExists)
	}

	stored := *u
	r.byID[u.ID] = &stored
	r.byUsername[u.Username] = &stored
	return nil
}

func (r *MemoryUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byUsername[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUsers) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

// MemoryHistory is a process-local HistoryRepository. Each user's slice is kept newest first.
type MemoryHistory struct {
	mu     sync.RWMutex
	byUser map[string][]models.TranslationRecord
}

// NewMemoryHistory creates an empty in-memory history repository.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{byUser: make(map[string][]models.TranslationRecord)}
}

func (r *MemoryHistory) Append(_ context.Context, rec *models.TranslationRecord, maxPerUser int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.byUser[rec.UserID]
	list := make([]models.TranslationRecord, 0, len(existing)+1)
	list = append(list, *rec)
	list = append(list, existing...)
	if maxPerUser > 0 && len(list) > maxPerUser {
		list = list[:maxPerUser]
	}
	r.byUser[rec.UserID] = list
	return nil
}

func (r *MemoryHistory) List(_ context.Context, userID string) ([]models.TranslationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byUser[userID]
	out := make([]models.TranslationRecord, len(list))
	copy(out, list)
	return out, nil
}

func (r *MemoryHistory) Delete(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byUser[userID]
	for i := range list {
		if list[i].ID == id {
			r.byUser[userID] = append(list[:i:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryHistory) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
	return nil
}

func (r *MemoryHistory) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, list := range r.byUser {
		n += int64(len(list))
	}
	return n, nil
}
