// Package services contains the auth service business logic. SessionService
// implements the login / register / refresh / logout / change password /
// validate token operations shared by the REST, GraphQL and gRPC transports.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/dmitrijs2005/hugmood/internal/cryptox"
	"github.com/dmitrijs2005/hugmood/internal/logging"
	"github.com/dmitrijs2005/hugmood/internal/server/auth"
	"github.com/dmitrijs2005/hugmood/internal/server/credentials"
	"github.com/dmitrijs2005/hugmood/internal/server/models"
)

// Messages returned by ChangePassword.
const (
	MsgPasswordChanged   = "Password changed successfully"
	MsgIncorrectPassword = "Current password is incorrect"
)

var (
	errLoginFields    = common.MissingField("Email and password are required")
	errRegisterFields = common.MissingField("Username, email, and password are required")
	errRefreshField   = common.MissingField("Refresh token is required")
	errPasswordFields = common.MissingField("Current password and new password are required")
	errPasswordLength = common.MissingField(fmt.Sprintf("Password must be at most %d bytes", cryptox.MaxPasswordLength))
	errUsernameAt     = common.MissingField("Username must not contain @")

	errInvalidRefresh = common.NewError(common.KindInvalidToken, "Invalid refresh token")
	errExpiredRefresh = common.NewError(common.KindTokenExpired, "Refresh token expired")
)

// CredentialStore is the subset of credentials.Store the session manager
// depends on.
type CredentialStore interface {
	CreateCredential(ctx context.Context, in credentials.NewCredential) (*models.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	VerifyPassword(ctx context.Context, id int64, password string) (bool, error)
	UpdatePasswordAndRevoke(ctx context.Context, id int64, newPassword string) error
	StoreRefreshToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	ConsumeRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeAllForCredential(ctx context.Context, id int64) error
}

// AuthResult is returned by every operation that establishes a session.
type AuthResult struct {
	Token        string             `json:"token"`
	RefreshToken string             `json:"refreshToken"`
	User         *models.PublicUser `json:"user"`
}

type RegisterInput struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

type PasswordChangeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Validation is the outcome of ValidateToken. Reason is set when Valid is
// false.
type Validation struct {
	Valid  bool               `json:"valid"`
	User   *models.PublicUser `json:"user,omitempty"`
	Reason common.Kind        `json:"reason,omitempty"`
}

type SessionService struct {
	store  CredentialStore
	tokens *auth.TokenService
	logger logging.Logger
	now    func() time.Time
}

func NewSessionService(store CredentialStore, tokens *auth.TokenService, logger logging.Logger) *SessionService {
	return &SessionService{
		store:  store,
		tokens: tokens,
		logger: logger.With("module", "session_service"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Login authenticates identifier (email or username) and issues a new
// token pair.
func (s *SessionService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, errLoginFields
	}

	user, err := s.store.Authenticate(ctx, identifier, password)
	if err != nil {
		if !errors.Is(err, common.ErrInvalidCredentials) {
			s.logger.Error(ctx, "login failed", "error", err)
		}
		return nil, err
	}

	return s.issuePair(ctx, user)
}

// Register creates a credential and signs it in.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, errRegisterFields
	}
	// identifiers containing @ are looked up by email at login
	if strings.Contains(in.Username, "@") {
		return nil, errUsernameAt
	}
	if len(in.Password) > cryptox.MaxPasswordLength {
		return nil, errPasswordLength
	}

	user, err := s.store.CreateCredential(ctx, credentials.NewCredential{
		Username:    in.Username,
		Email:       in.Email,
		Password:    in.Password,
		DisplayName: in.DisplayName,
		AvatarURL:   in.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return s.issuePair(ctx, user)
}

// Refresh rotates a refresh token. The presented token is consumed whether
// or not the call succeeds, so it can never be replayed.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, errRefreshField
	}

	stored, err := s.store.ConsumeRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errInvalidRefresh
		}
		return nil, err
	}

	if stored.Expired(s.now()) {
		return nil, errExpiredRefresh
	}

	user, err := s.store.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errInvalidRefresh
		}
		return nil, err
	}

	return s.issuePair(ctx, user)
}

// Logout revokes all refresh tokens of identity. A nil identity is a no-op.
func (s *SessionService) Logout(ctx context.Context, identity *models.Identity) error {
	if identity == nil {
		return nil
	}
	if err := s.store.RevokeAllForCredential(ctx, identity.ID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

// ChangePassword replaces the password when current matches. A mismatch is
// a normal result, not an error, and changes nothing.
func (s *SessionService) ChangePassword(ctx context.Context, identity *models.Identity, current, next string) (*PasswordChangeResult, error) {
	if identity == nil {
		return nil, common.ErrorUnauthorized
	}
	if current == "" || next == "" {
		return nil, errPasswordFields
	}
	if len(next) > cryptox.MaxPasswordLength {
		return nil, errPasswordLength
	}

	ok, err := s.store.VerifyPassword(ctx, identity.ID, current)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if !ok {
		return &PasswordChangeResult{Success: false, Message: MsgIncorrectPassword}, nil
	}

	if err := s.store.UpdatePasswordAndRevoke(ctx, identity.ID, next); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	s.logger.Info(ctx, "password changed", "user_id", identity.ID)
	return &PasswordChangeResult{Success: true, Message: MsgPasswordChanged}, nil
}

// ValidateToken verifies an access token and resolves its credential.
// Token problems produce Valid=false; only storage failures are errors.
func (s *SessionService) ValidateToken(ctx context.Context, token string) (*Validation, error) {
	claims, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return &Validation{Valid: false, Reason: common.KindOf(err)}, nil
	}

	user, err := s.store.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &Validation{Valid: false, Reason: common.KindInvalidToken}, nil
		}
		return nil, err
	}

	return &Validation{Valid: true, User: user.Public()}, nil
}

// Me resolves the public view of identity.
func (s *SessionService) Me(ctx context.Context, identity *models.Identity) (*models.PublicUser, error) {
	if identity == nil {
		return nil, common.ErrorUnauthorized
	}
	user, err := s.store.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// IdentityFromToken verifies an access token locally. The auth service uses
// it for requests that act on the caller's own account.
func (s *SessionService) IdentityFromToken(token string) (*models.Identity, error) {
	claims, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return nil, err
	}
	return &models.Identity{ID: claims.UserID}, nil
}

func (s *SessionService) issuePair(ctx context.Context, user *models.User) (*AuthResult, error) {
	access, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, expiresAt, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.store.StoreRefreshToken(ctx, user.ID, refresh, expiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResult{Token: access, RefreshToken: refresh, User: user.Public()}, nil
}
