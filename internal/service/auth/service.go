package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/dairyfeed/internal/config"
	"github.com/mamadbah2/dairyfeed/internal/domain/models"
	"github.com/mamadbah2/dairyfeed/internal/repository/mongodb"
	"github.com/mamadbah2/dairyfeed/pkg/clients/messaging"
)

// ErrInvalidCredentials is returned for any failed PIN, OTP or API key check.
// The reason is deliberately uniform so callers cannot probe which part was
// wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims carries the tenant identity inside a session token.
type Claims struct {
	OrgID  string `json:"org_id"`
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Service implements PIN, OTP and API key authentication for tenants.
type Service struct {
	repo    mongodb.AuthRepository
	gateway messaging.Client
	cfg     config.AuthConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires the auth service.
func NewService(repo mongodb.AuthRepository, gateway messaging.Client, cfg config.AuthConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, gateway: gateway, cfg: cfg, logger: logger, now: time.Now}
}

// LoginWithPIN verifies a user's PIN and mints a session token.
func (s *Service) LoginWithPIN(ctx context.Context, phone, pin string) (string, error) {
	user, err := s.repo.GetUserByPhone(ctx, phone)
	if err != nil {
		var nf *models.NotFoundError
		if errors.As(err, &nf) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(pin)) != nil {
		s.logger.Warn("pin rejected", zap.String("user_id", user.ID))
		return "", ErrInvalidCredentials
	}

	return s.mintToken(user.OrgID, user.ID)
}

// RequestOTP generates a code, stores its hash with an expiry and delivers it
// through the gateway. The returned challenge identifier is needed to verify.
func (s *Service) RequestOTP(ctx context.Context, phone string) (string, error) {
	user, err := s.repo.GetUserByPhone(ctx, phone)
	if err != nil {
		var nf *models.NotFoundError
		if errors.As(err, &nf) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	code, err := generateCode(s.cfg.OTPDigits)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	challenge := models.OTPChallenge{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CodeHash:  hashSecret(code),
		ExpiresAt: s.now().Add(s.cfg.OTPTTL),
	}

	if err := s.repo.SaveOTPChallenge(ctx, challenge); err != nil {
		return "", fmt.Errorf("store otp challenge: %w", err)
	}

	if _, err := s.gateway.SendOTP(ctx, messaging.SendOTPRequest{Phone: phone, Code: code}); err != nil {
		return "", fmt.Errorf("deliver otp: %w", err)
	}

	s.logger.Info("otp issued", zap.String("challenge_id", challenge.ID), zap.String("user_id", user.ID))
	return challenge.ID, nil
}

// VerifyOTP checks a delivered code against its challenge and mints a session
// token on success. A challenge can be consumed once.
func (s *Service) VerifyOTP(ctx context.Context, challengeID, code string) (string, error) {
	challenge, err := s.repo.GetOTPChallenge(ctx, challengeID)
	if err != nil {
		var nf *models.NotFoundError
		if errors.As(err, &nf) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup otp challenge: %w", err)
	}

	if challenge.Consumed || s.now().After(challenge.ExpiresAt) {
		return "", ErrInvalidCredentials
	}

	if subtle.ConstantTimeCompare([]byte(challenge.CodeHash), []byte(hashSecret(code))) != 1 {
		return "", ErrInvalidCredentials
	}

	// Resolve the user before burning the challenge so a transient lookup
	// failure leaves the code usable for a retry.
	user, err := s.repo.GetUser(ctx, challenge.UserID)
	if err != nil {
		return "", fmt.Errorf("lookup otp user: %w", err)
	}

	if err := s.repo.ConsumeOTPChallenge(ctx, challengeID); err != nil {
		return "", fmt.Errorf("consume otp challenge: %w", err)
	}

	return s.mintToken(user.OrgID, user.ID)
}

// IssueAPIKey creates a machine credential for the organization. The
// plaintext is returned exactly once; only the hash is stored.
func (s *Service) IssueAPIKey(ctx context.Context, orgID, label string) (string, *models.APIKey, error) {
	plaintext := "dfk_" + uuid.NewString()

	key := models.APIKey{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		Label:     label,
		KeyHash:   hashSecret(plaintext),
		CreatedAt: s.now(),
	}

	if err := s.repo.SaveAPIKey(ctx, key); err != nil {
		return "", nil, fmt.Errorf("store api key: %w", err)
	}

	s.logger.Info("api key issued", zap.String("org_id", orgID), zap.String("key_id", key.ID))
	return plaintext, &key, nil
}

// VerifyAPIKey resolves a presented key to its organization.
func (s *Service) VerifyAPIKey(ctx context.Context, presented string) (string, error) {
	keys, err := s.repo.ListActiveAPIKeys(ctx)
	if err != nil {
		return "", fmt.Errorf("list api keys: %w", err)
	}

	hash := hashSecret(presented)
	for _, key := range keys {
		if subtle.ConstantTimeCompare([]byte(key.KeyHash), []byte(hash)) == 1 {
			return key.OrgID, nil
		}
	}
	return "", ErrInvalidCredentials
}

// ParseToken validates a session token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

func (s *Service) mintToken(orgID, userID string) (string, error) {
	now := s.now()
	claims := Claims{
		OrgID:  orgID,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionTTL)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// generateCode produces a zero-padded numeric code of the given length.
func generateCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
