package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"hrms/internal/platform/crypto"
)

const totpIssuer = "HRMS"

type Service struct {
	Store      *Store
	Crypto     *crypto.Service
	Secret     string
	SessionTTL time.Duration
	ResetTTL   time.Duration
}

func NewService(store *Store, cryptoSvc *crypto.Service, secret string, sessionTTL, resetTTL time.Duration) *Service {
	return &Service{Store: store, Crypto: cryptoSvc, Secret: secret, SessionTTL: sessionTTL, ResetTTL: resetTTL}
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login verifies credentials (and the TOTP code when MFA is enabled), opens a
// server-side session and issues a bearer token bound to it.
func (s *Service) Login(ctx context.Context, email, password, mfaCode string) (LoginResult, error) {
	creds, err := s.Store.findCredentialsByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if err := CheckPassword(creds.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	if creds.MFAEnabled {
		if mfaCode == "" {
			return LoginResult{}, ErrMFARequired
		}
		secret, err := s.Crypto.DecryptString(creds.MFASecretEnc)
		if err != nil || secret == "" || !totp.Validate(mfaCode, secret) {
			return LoginResult{}, ErrMFAInvalid
		}
	}

	sessionID, err := NewOpaqueToken()
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.Store.CreateSession(ctx, creds.User.ID, HashToken(sessionID), time.Now().Add(s.SessionTTL)); err != nil {
		return LoginResult{}, err
	}

	token, err := GenerateToken(s.Secret, Claims{
		UserID:    creds.User.ID,
		CompanyID: creds.User.CompanyID,
		Role:      creds.User.Role,
		SessionID: sessionID,
	}, s.SessionTTL)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.Store.UpdateLastLogin(ctx, creds.User.ID); err != nil {
		slog.Warn("update last_login failed", "userId", creds.User.ID, "err", err)
	}

	return LoginResult{Token: token, User: creds.User}, nil
}

func (s *Service) Logout(ctx context.Context, userID, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := s.Store.RevokeSession(ctx, userID, HashToken(sessionID)); err != nil {
		slog.Warn("session revoke failed", "userId", userID, "err", err)
	}
}

// Refresh rotates the server-side session behind a still-valid token and
// issues a fresh bearer token.
func (s *Service) Refresh(ctx context.Context, claims *Claims) (string, error) {
	valid, err := s.Store.SessionValid(ctx, claims.UserID, HashToken(claims.SessionID))
	if err != nil {
		return "", err
	}
	if !valid {
		return "", ErrSessionExpired
	}

	newSessionID, err := NewOpaqueToken()
	if err != nil {
		return "", err
	}
	expires := time.Now().Add(s.SessionTTL)
	if err := s.Store.RotateSession(ctx, claims.UserID, HashToken(claims.SessionID), HashToken(newSessionID), expires); err != nil {
		return "", err
	}

	return GenerateToken(s.Secret, Claims{
		UserID:    claims.UserID,
		CompanyID: claims.CompanyID,
		Role:      claims.Role,
		SessionID: newSessionID,
	}, s.SessionTTL)
}

// RequestPasswordReset stores a hashed one-time token for the account. The
// plain token is returned so the caller can deliver it; unknown emails return
// an empty token without error to avoid account enumeration.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	userID, err := s.Store.UserIDByEmail(ctx, email)
	if err != nil {
		return "", nil
	}
	token, err := NewOpaqueToken()
	if err != nil {
		return "", err
	}
	if err := s.Store.CreatePasswordReset(ctx, userID, HashToken(token), time.Now().Add(s.ResetTTL)); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrWeakPassword)
	}
	hashed := HashToken(token)
	userID, err := s.Store.PasswordResetUserID(ctx, hashed)
	if err != nil {
		return err
	}
	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.UpdateUserPassword(ctx, userID, passwordHash); err != nil {
		return err
	}
	if err := s.Store.MarkPasswordResetUsed(ctx, hashed); err != nil {
		slog.Warn("password reset mark used failed", "err", err)
	}
	return nil
}

type MFASetupResult struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}

func (s *Service) MFASetup(ctx context.Context, userID, accountName string) (MFASetupResult, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: accountName,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return MFASetupResult{}, err
	}
	encrypted, err := s.Crypto.EncryptString(key.Secret())
	if err != nil {
		return MFASetupResult{}, err
	}
	if err := s.Store.SetMFASecret(ctx, userID, encrypted); err != nil {
		return MFASetupResult{}, err
	}
	return MFASetupResult{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

func (s *Service) MFASetEnabled(ctx context.Context, userID, code string, enabled bool) error {
	secretEnc, err := s.Store.MFASecret(ctx, userID)
	if err != nil {
		return ErrMFAInvalid
	}
	secret, err := s.Crypto.DecryptString(secretEnc)
	if err != nil || secret == "" || !totp.Validate(code, secret) {
		return ErrMFAInvalid
	}
	return s.Store.SetMFAEnabled(ctx, userID, enabled)
}

func (s *Service) Profile(ctx context.Context, userID string) (User, error) {
	return s.Store.UserByID(ctx, userID)
}

// CreateUser provisions a login with a freshly hashed password. CompanyID may
// be empty during signup and assigned once the company row exists.
func (s *Service) CreateUser(ctx context.Context, companyID, fullName, email, password, role string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("%w: password must be at least 8 characters", ErrWeakPassword)
	}
	if !ValidRole(role) {
		return "", fmt.Errorf("invalid role %q", role)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}
	return s.Store.CreateUser(ctx, companyID, fullName, email, hash, role)
}

func (s *Service) AssignCompany(ctx context.Context, userID, companyID string) error {
	return s.Store.AssignCompany(ctx, userID, companyID)
}
