// Package service — AuthService handles OTP login, OTP signup, Google
// federated login and JWT token management.
package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jayPrakash10/expense-backend/internal/domain"
	"github.com/jayPrakash10/expense-backend/internal/infra/observability"
	"github.com/jayPrakash10/expense-backend/internal/port"
)

var authTracer = otel.Tracer("service/auth")

const bcryptCost = 12

// AuthService orchestrates authentication flows.
type AuthService struct {
	users     port.UserStore
	settings  port.SettingsStore
	otps      port.OTPStore
	mailer    port.Mailer
	jwtSecret []byte
	accessTTL time.Duration
	otpTTL    time.Duration
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(users port.UserStore, settings port.SettingsStore, otps port.OTPStore, mailer port.Mailer,
	jwtSecret string, accessTTL, otpTTL time.Duration, metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		settings:  settings,
		otps:      otps,
		mailer:    mailer,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		otpTTL:    otpTTL,
		metrics:   metrics,
		logger:    logger,
	}
}

// ============================================================
// Login OTP — POST /v1/auth/otp/generate + /v1/auth/otp/verify
// ============================================================

// GenerateLoginOTP issues a fresh code for an existing user. Issuing
// invalidates any code previously sent to the same address.
func (s *AuthService) GenerateLoginOTP(ctx context.Context, email string) error {
	ctx, span := authTracer.Start(ctx, "AuthService.GenerateLoginOTP")
	defer span.End()

	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err != nil {
		return err
	}

	return s.issueOTP(ctx, email)
}

// VerifyLoginOTP checks the code and returns an access token for the user.
func (s *AuthService) VerifyLoginOTP(ctx context.Context, req *domain.VerifyOTPRequest) (*domain.AuthResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.VerifyLoginOTP")
	defer span.End()

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.consumeOTP(ctx, email, req.OTP); err != nil {
		return nil, err
	}

	s.logger.Info("user logged in via OTP", zap.String("user_id", user.ID))
	return s.authResponse(user)
}

// ============================================================
// Signup OTP — POST /v1/auth/signup/otp/generate + verify
// ============================================================

// GenerateSignupOTP issues a code for an email that must NOT belong to an
// existing user.
func (s *AuthService) GenerateSignupOTP(ctx context.Context, email string) error {
	ctx, span := authTracer.Start(ctx, "AuthService.GenerateSignupOTP")
	defer span.End()

	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return &domain.ErrConflict{Message: "email already registered"}
	}

	return s.issueOTP(ctx, email)
}

// VerifySignupOTP checks the code, creates the user plus default settings
// and returns an access token.
func (s *AuthService) VerifySignupOTP(ctx context.Context, req *domain.VerifySignupOTPRequest) (*domain.AuthResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.VerifySignupOTP")
	defer span.End()

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, &domain.ErrConflict{Message: "email already registered"}
	}

	if err := s.consumeOTP(ctx, email, req.OTP); err != nil {
		return nil, err
	}

	user, err := s.createUserWithDefaults(ctx, email, req.Name, req.ProfileImg)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up via OTP", zap.String("user_id", user.ID))
	return s.authResponse(user)
}

// ============================================================
// Google — POST /v1/auth/google
// ============================================================

// GoogleAuth finds or creates the user for a verified Google identity.
func (s *AuthService) GoogleAuth(ctx context.Context, req *domain.GoogleAuthRequest) (*domain.AuthResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.GoogleAuth")
	defer span.End()

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if req.Name == "" {
			return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
		}
		user, err = s.createUserWithDefaults(ctx, email, req.Name, req.ProfileImg)
		if err != nil {
			return nil, err
		}
		s.logger.Info("user created via Google auth", zap.String("user_id", user.ID))
	}

	return s.authResponse(user)
}

// ============================================================
// Tokens
// ============================================================

// JWTClaims represents the custom claims in access tokens.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// ValidateAccessToken parses and validates an access token.
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}

	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}

	return claims, nil
}

// ============================================================
// Internal helpers
// ============================================================

func (s *AuthService) issueOTP(ctx context.Context, email string) error {
	ctx, span := authTracer.Start(ctx, "AuthService.issueOTP")
	defer span.End()
	span.SetAttributes(attribute.String("email.domain", emailDomain(email)))

	code := generateOTPCode()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}

	if err := s.otps.DeleteOTPs(ctx, email); err != nil {
		return fmt.Errorf("invalidate previous otps: %w", err)
	}

	otp := &domain.OTP{
		Email:     email,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().Add(s.otpTTL),
	}
	if err := s.otps.StoreOTP(ctx, otp); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		return &domain.ErrExternalService{Service: "mail", Err: err}
	}

	s.metrics.IncrOTPIssued()
	s.logger.Info("otp issued", zap.String("email", maskEmail(email)))
	return nil
}

func (s *AuthService) consumeOTP(ctx context.Context, email, code string) error {
	if code == "" {
		return &domain.ErrValidation{Field: "otp", Message: "otp is required"}
	}

	otp, err := s.otps.GetActiveOTP(ctx, email)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)); err != nil {
		s.logger.Warn("otp mismatch", zap.String("email", maskEmail(email)))
		return &domain.ErrInvalidCode{}
	}
	return s.otps.MarkOTPUsed(ctx, otp.ID)
}

func (s *AuthService) createUserWithDefaults(ctx context.Context, email, name, profileImg string) (*domain.User, error) {
	user, err := s.users.CreateUser(ctx, &domain.User{
		Name:       name,
		Email:      email,
		ProfileImg: profileImg,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Default settings row; failure here leaves a user without settings,
	// which GetSettings surfaces as not found.
	if _, err := s.settings.CreateSettings(ctx, &domain.UserSettings{
		UserID:   user.ID,
		Currency: domain.CurrencyINR,
		Language: "en",
		QuickAdd: []string{},
	}); err != nil {
		return nil, fmt.Errorf("create default settings: %w", err)
	}
	return user, nil
}

func (s *AuthService) authResponse(user *domain.User) (*domain.AuthResponse, error) {
	token, err := s.signAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &domain.AuthResponse{
		AccessToken: token,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		User:        user,
	}, nil
}

func (s *AuthService) signAccessToken(userID, email string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Sub:   userID,
		Email: email,
		Type:  "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func generateOTPCode() string {
	code := ""
	for i := 0; i < 6; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(10))
		code += fmt.Sprintf("%d", n.Int64())
	}
	return code
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", &domain.ErrValidation{Field: "email", Message: "invalid email address"}
	}
	return email, nil
}

func emailDomain(email string) string {
	if idx := strings.LastIndex(email, "@"); idx >= 0 {
		return email[idx+1:]
	}
	return ""
}

func maskEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "***"
	}
	local := parts[0]
	masked := string(local[0])
	if len(local) > 1 {
		masked += strings.Repeat("*", len(local)-1)
	}
	return masked + "@" + parts[1]
}
