package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/clientdesk/backend/internal/dto"
	"github.com/clientdesk/backend/internal/models"
	"github.com/clientdesk/backend/internal/notify"
	"github.com/clientdesk/backend/internal/repository"
	"github.com/clientdesk/backend/internal/security"
	"github.com/clientdesk/backend/internal/token"
	"github.com/google/uuid"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrClientNotUpdatable = errors.New("client not found or is an admin")
	ErrClientNotDeletable = errors.New("client not found or is an admin")
)

const ClientDeletedMessage = "Client deleted successfully."

// dummyPassword is hashed once so unknown-email logins pay the same compare
// cost as known ones.
const dummyPassword = "not-a-real-password-0!A"

// TokenIssuer signs the access/refresh pair handed out on authentication.
type TokenIssuer interface {
	IssuePair(userID uuid.UUID, isAdmin bool) (*token.Pair, error)
}

// NotificationObserver is told how each welcome dispatch ended.
type NotificationObserver interface {
	ObserveNotification(result string)
}

type AccountServiceConfig struct {
	// NotifyTimeout bounds one welcome dispatch. Zero means 10s.
	NotifyTimeout time.Duration
}

type AccountService struct {
	users    repository.UserRepository
	hasher   security.PasswordHasher
	tokens   TokenIssuer
	notifier notify.Notifier
	observer NotificationObserver
	logger   *slog.Logger

	notifyTimeout time.Duration
	now           func() time.Time
	inflight      sync.WaitGroup

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(
	users repository.UserRepository,
	hasher security.PasswordHasher,
	tokens TokenIssuer,
	notifier notify.Notifier,
	logger *slog.Logger,
	cfg AccountServiceConfig,
) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 10 * time.Second
	}
	return &AccountService{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		notifier:      notifier,
		logger:        logger,
		notifyTimeout: cfg.NotifyTimeout,
		now:           time.Now,
	}
}

// WithObserver attaches an observer for notification outcomes.
func (s *AccountService) WithObserver(o NotificationObserver) *AccountService {
	s.observer = o
	return s
}

func (s *AccountService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Password:     hash,
		BusinessType: optionalString(req.BusinessType),
		IsAdmin:      false,
		Status:       models.StatusActive,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.dispatchWelcome(user)

	return s.authResponse(&user)
}

func (s *AccountService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.compareDummy(req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if user.IsInactive() {
		return nil, ErrAccountDisabled
	}

	if err := s.hasher.Compare(user.Password, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLoginAt = &now

	return s.authResponse(user)
}

func (s *AccountService) ListClients(ctx context.Context) ([]dto.ClientResponse, error) {
	users, err := s.users.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	clients := make([]dto.ClientResponse, 0, len(users))
	for i := range users {
		clients = append(clients, dto.NewClientResponse(&users[i]))
	}
	return clients, nil
}

func (s *AccountService) UpdateClient(ctx context.Context, id string, req *dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrClientNotUpdatable
	}

	fields := repository.ClientFields{
		Name:         trimmed(req.Name),
		BusinessType: trimmed(req.BusinessType),
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		fields.Email = &email
	}

	user, err := s.users.UpdateClient(ctx, userID, fields)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrClientNotUpdatable
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		default:
			return nil, fmt.Errorf("failed to update client: %w", err)
		}
	}

	resp := dto.NewClientResponse(user)
	return &resp, nil
}

func (s *AccountService) DeleteClient(ctx context.Context, id string) (*dto.MessageResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrClientNotDeletable
	}

	if err := s.users.DeleteClient(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotDeletable
		}
		return nil, fmt.Errorf("failed to delete client: %w", err)
	}

	return &dto.MessageResponse{Message: ClientDeletedMessage}, nil
}

func (s *AccountService) compareDummy(plain string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.logger.Warn("failed to prepare dummy hash", "error", err.Error())
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_ = s.hasher.Compare(s.dummyHash, plain)
	}
}

// Wait blocks until every in-flight welcome dispatch has finished.
func (s *AccountService) Wait() {
	s.inflight.Wait()
}

// dispatchWelcome sends the welcome message on its own goroutine. It is
// detached from the request context so the response is never held up and a
// client disconnect does not cancel the send.
func (s *AccountService) dispatchWelcome(user models.User) {
	if s.notifier == nil {
		return
	}
	msg := notify.WelcomeMessage{Email: user.Email, Name: user.Name}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		id, err := s.notifier.SendWelcome(ctx, msg)
		if err != nil {
			s.logger.Error("error sending welcome email",
				"action", "welcome_notification",
				"user_id", user.ID.String(),
				"error", err.Error(),
			)
			s.observe("failed")
			return
		}
		s.logger.Info("welcome email sent",
			"action", "welcome_notification",
			"user_id", user.ID.String(),
			"message_id", id,
		)
		s.observe("sent")
	}()
}

func (s *AccountService) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveNotification(result)
	}
}

func (s *AccountService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.tokens.IssuePair(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return &dto.AuthResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
