package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/learnhub-api/internal/domain"
	jwtinfra "github.com/learnhub-api/internal/infrastructure/jwt"
	"github.com/learnhub-api/internal/pkg/id"
	"github.com/learnhub-api/internal/pkg/otp"
	"github.com/learnhub-api/internal/pkg/password"
)

// LoginResult carries the token pair and user returned by Login.
type LoginResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
}

// TokenResult carries the tokens returned by Refresh. The refresh token is
// the one the caller presented: the flow mints a new access token without
// rotating or revoking the refresh token.
type TokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service composes the hasher, OTP manager and token provider into the
// account lifecycle: Unregistered -> Pending (OTP issued) -> Active.
// Rate limiting is a precondition enforced by the transport layer, not here.
type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (string, error)
	ResendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetActive(ctx context.Context, userID string, active bool) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type otpManager interface {
	Store(ctx context.Context, identity, code string, ttl time.Duration) error
	Verify(ctx context.Context, identity, submitted string) error
}

type tokenProvider interface {
	AccessClaims(subject, role string) jwtinfra.Claims
	RefreshClaims(subject, role string) jwtinfra.Claims
	Sign(claims jwtinfra.Claims) (string, error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
	AccessTTL() time.Duration
}

type service struct {
	repo        userStore
	mailer      mailer
	verifyOTP   otpManager
	resetOTP    otpManager
	jwtProvider tokenProvider
	otpTTL      time.Duration
}

type ServiceDeps struct {
	UserRepo    userStore
	Mailer      mailer
	VerifyOTP   otpManager
	ResetOTP    otpManager
	JWTProvider tokenProvider
	OTPTTL      time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.UserRepo,
		mailer:      deps.Mailer,
		verifyOTP:   deps.VerifyOTP,
		resetOTP:    deps.ResetOTP,
		jwtProvider: deps.JWTProvider,
		otpTTL:      deps.OTPTTL,
	}
}

// Register creates an inactive account and emails a verification code.
// Email delivery is best-effort: a send failure is logged and the
// registration still succeeds — the user recovers via resend-otp.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (string, error) {
	email := strings.ToLower(req.Email)

	// Only genuine absence clears a uniqueness check. A store failure must
	// not read as "available": proceeding to Put could create a second
	// account for an existing email.
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return "", fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("lookup email: %w", err)
	}
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return "", fmt.Errorf("username already taken: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("lookup username: %w", err)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return "", err
	}

	if err := s.issueOTP(ctx, s.verifyOTP, email, "Verify your email"); err != nil {
		slog.Warn("failed to deliver verification otp", "email", email, "err", err)
	}
	return u.UserID, nil
}

// ResendOTP re-issues the verification code, superseding any live one.
func (s *service) ResendOTP(ctx context.Context, email string) error {
	email = strings.ToLower(email)
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return lookupErr(err)
	}
	if u.IsActive {
		return fmt.Errorf("account already active: %w", domain.ErrConflict)
	}
	return s.issueOTP(ctx, s.verifyOTP, email, "Verify your email")
}

// VerifyOTP activates the account when the submitted code matches.
// Already-active accounts verify as a no-op.
func (s *service) VerifyOTP(ctx context.Context, email, code string) error {
	email = strings.ToLower(email)
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return lookupErr(err)
	}
	if u.IsActive {
		return nil
	}
	if err := s.verifyOTP.Verify(ctx, email, code); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, u.UserID, true)
}

// Login authenticates by email and password and issues a token pair.
// A missing, inactive or blocked account and a wrong password all collapse
// into the same unauthorized error so responses don't enumerate accounts.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(req.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := password.Verify(req.Password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok || !u.IsActive || u.IsBlocked {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	accessToken, err := s.jwtProvider.Sign(s.jwtProvider.AccessClaims(u.UserID, u.Role))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.jwtProvider.Sign(s.jwtProvider.RefreshClaims(u.UserID, u.Role))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &LoginResult{
		User:         u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtProvider.AccessTTL().Seconds()),
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// presented refresh token is returned unchanged; with no revocation store
// it stays usable until natural expiry.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	claims, err := s.jwtProvider.Verify(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	if claims.TokenKind != jwtinfra.KindRefresh {
		return nil, fmt.Errorf("not a refresh token: %w", domain.ErrUnauthorized)
	}

	accessToken, err := s.jwtProvider.Sign(s.jwtProvider.AccessClaims(claims.Subject, claims.Role))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &TokenResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtProvider.AccessTTL().Seconds()),
	}, nil
}

// ForgotPassword emails a reset-scoped code to an existing, non-blocked account.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(email)
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return lookupErr(err)
	}
	if u.IsBlocked {
		return fmt.Errorf("account is blocked: %w", domain.ErrForbidden)
	}
	return s.issueOTP(ctx, s.resetOTP, email, "Password reset code")
}

// ResetPassword verifies the reset code and stores a fresh hash.
func (s *service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	email := strings.ToLower(req.Email)
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return lookupErr(err)
	}
	if err := s.resetOTP.Verify(ctx, email, req.Code); err != nil {
		return err
	}
	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, u.UserID, hash)
}

func (s *service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

// lookupErr normalizes user-store lookup failures: absence keeps its
// sentinel so handlers answer 404, anything else (a store outage, a marshal
// failure) passes through and surfaces as an internal error.
func lookupErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return fmt.Errorf("lookup account: %w", err)
}

// issueOTP generates a code, stores it (overwriting any prior code for the
// identity) and emails it.
func (s *service) issueOTP(ctx context.Context, mgr otpManager, email, subject string) error {
	code, err := otp.GenerateCode()
	if err != nil {
		return err
	}
	if err := mgr.Store(ctx, email, code, s.otpTTL); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	body := fmt.Sprintf("Your code is: %s. This code expires in %d minutes.", code, int(s.otpTTL.Minutes()))
	if err := s.mailer.SendEmail(email, subject, body); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}
