package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/codyseavey/textify/internal/errs"
	"github.com/codyseavey/textify/internal/metrics"
	"github.com/codyseavey/textify/internal/models"
	"github.com/codyseavey/textify/internal/repository"
)

// MinPasswordCost is the lowest bcrypt cost accepted for stored passwords.
const MinPasswordCost = 8

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.PublicUser
}

// AuthService is the credential store: it owns password hashing and token issuance.
type AuthService struct {
	users      repository.UserRepository
	tokens     *TokenService
	bcryptCost int
	// dummyHash is compared against when the username is unknown so that
	// failed logins cost the same whether or not the account exists.
	dummyHash []byte
	compare   func(hash, password []byte) error
	log       *zap.Logger
}

// NewAuthService creates an auth service. Costs outside [MinPasswordCost, bcrypt.MaxCost] are clamped.
func NewAuthService(users repository.UserRepository, tokens *TokenService, bcryptCost int, log *zap.Logger) *AuthService {
	bcryptCost = min(max(bcryptCost, MinPasswordCost), bcrypt.MaxCost)

	// Only fails for an out-of-range cost, which was clamped above.
	dummy, _ := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)

	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
		compare:    bcrypt.CompareHashAndPassword,
		log:        log,
	}
}

// Register creates a user and signs them in. The user is persisted before the token is issued.
func (s *AuthService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", errs.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		// bcrypt rejects passwords longer than 72 bytes.
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", errs.ErrValidation)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			metrics.AuthEventsTotal.WithLabelValues("register_conflict").Inc()
		}
		return nil, err
	}

	metrics.AuthEventsTotal.WithLabelValues("register").Inc()
	metrics.UpdateStoreMetrics(ctx, s.users, nil, s.log)
	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))

	return s.issue(user)
}

// Login verifies credentials. Unknown users and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", errs.ErrValidation)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	hash := s.dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if err := s.compare(hash, []byte(password)); user == nil || err != nil {
		metrics.AuthEventsTotal.WithLabelValues("login_failed").Inc()
		return nil, fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)
	}

	metrics.AuthEventsTotal.WithLabelValues("login").Inc()
	return s.issue(user)
}

// Authenticate verifies a bearer token and returns the user it was issued to.
func (s *AuthService) Authenticate(token string) (models.PublicUser, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		metrics.AuthEventsTotal.WithLabelValues("token_rejected").Inc()
		return models.PublicUser{}, err
	}
	return models.PublicUser{ID: claims.UserID, Username: claims.Username}, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: user.Public()}, nil
}
