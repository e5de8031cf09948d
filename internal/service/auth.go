package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"safar/internal/apperrors"
	"safar/internal/logger"
	"safar/internal/model"
	"safar/internal/repository"
)

const bcryptCost = 10

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// errNoDatabase is reported by every account operation without a store
var errNoDatabase = errors.New("no user store configured")

// AuthService registers and signs in travellers. Issuing the session
// itself is left to the transport.
type AuthService struct {
	users  repository.UserStore
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService creates an auth service; users may be nil when no
// database is configured, in which case every call fails.
func NewAuthService(users repository.UserStore, log *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		logger: logger.OrNop(log).Named("auth"),
		now:    time.Now,
	}
}

// Enabled reports whether a user store is configured
func (s *AuthService) Enabled() bool {
	return s.users != nil
}

func databaseNotConnected() *apperrors.Error {
	return apperrors.Internalf("Database not connected", errNoDatabase)
}

// Register creates an email account
func (s *AuthService) Register(ctx context.Context, req *model.AuthRequest) (*model.UserSummary, error) {
	if !s.Enabled() {
		return nil, databaseNotConnected()
	}

	name, email := strings.TrimSpace(req.Name), strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, apperrors.Validation("Missing fields")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperrors.Validation("Invalid email")
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("Email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}
	hashStr := string(hash)

	user := &model.User{
		ID:           NewUserID(s.now()),
		Name:         name,
		Email:        email,
		PasswordHash: &hashStr,
		Provider:     model.ProviderEmail,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Email already exists")
		}
		return nil, apperrors.Internal(err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return summaryOf(user), nil
}

// Login checks an email account's password
func (s *AuthService) Login(ctx context.Context, req *model.AuthRequest) (*model.UserSummary, error) {
	if !s.Enabled() {
		return nil, databaseNotConnected()
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.Validation("Missing fields")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	// Accounts created through the mock provider have no password
	if user == nil || user.Provider != model.ProviderEmail || user.PasswordHash == nil {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return summaryOf(user), nil
}

// OAuthMock signs in with a name and email only, creating the account on
// first sight.
func (s *AuthService) OAuthMock(ctx context.Context, req *model.AuthRequest) (*model.UserSummary, error) {
	if !s.Enabled() {
		return nil, databaseNotConnected()
	}

	name, email := strings.TrimSpace(req.Name), strings.TrimSpace(req.Email)
	if name == "" || email == "" {
		return nil, apperrors.Validation("Missing mock data")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if user == nil {
		user = &model.User{
			ID:       NewUserID(s.now()),
			Name:     name,
			Email:    email,
			Provider: model.ProviderGoogle,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, apperrors.Internal(err)
		}
		s.logger.Info("mock oauth user created", zap.String("user_id", user.ID))
	} else if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, apperrors.Internal(err)
	}

	// The response echoes the name that was sent
	return &model.UserSummary{UserID: user.ID, Name: name, Email: email}, nil
}

// Session describes the signed-in user, or returns nil when the account
// no longer exists.
func (s *AuthService) Session(ctx context.Context, userID string) (*model.SessionInfo, error) {
	if !s.Enabled() {
		return nil, databaseNotConnected()
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if user == nil {
		return nil, nil
	}

	traits, err := s.users.GetTraits(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.SessionInfo{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Onboarded: traits != nil,
		Traits:    traits,
	}, nil
}

func summaryOf(user *model.User) *model.UserSummary {
	return &model.UserSummary{UserID: user.ID, Name: user.Name, Email: user.Email}
}
