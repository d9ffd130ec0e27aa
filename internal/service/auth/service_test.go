package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/dairyfeed/internal/config"
	"github.com/mamadbah2/dairyfeed/internal/domain/models"
	"github.com/mamadbah2/dairyfeed/pkg/clients/messaging"
)

type fakeRepo struct {
	users      map[string]models.User // keyed by phone
	challenges map[string]models.OTPChallenge
	keys       []models.APIKey
	userErr    error // injected failure for GetUser
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      make(map[string]models.User),
		challenges: make(map[string]models.OTPChallenge),
	}
}

func (f *fakeRepo) GetOrganization(_ context.Context, id string) (*models.Organization, error) {
	return &models.Organization{ID: id}, nil
}

func (f *fakeRepo) GetUserByPhone(_ context.Context, phone string) (*models.User, error) {
	user, ok := f.users[phone]
	if !ok {
		return nil, &models.NotFoundError{Resource: "user", IDs: []string{phone}}
	}
	return &user, nil
}

func (f *fakeRepo) GetUser(_ context.Context, id string) (*models.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	for _, user := range f.users {
		if user.ID == id {
			return &user, nil
		}
	}
	return nil, &models.NotFoundError{Resource: "user", IDs: []string{id}}
}

func (f *fakeRepo) SaveAPIKey(_ context.Context, key models.APIKey) error {
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeRepo) FindAPIKeysByOrg(_ context.Context, orgID string) ([]models.APIKey, error) {
	var out []models.APIKey
	for _, key := range f.keys {
		if key.OrgID == orgID {
			out = append(out, key)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListActiveAPIKeys(context.Context) ([]models.APIKey, error) {
	var out []models.APIKey
	for _, key := range f.keys {
		if !key.Revoked {
			out = append(out, key)
		}
	}
	return out, nil
}

func (f *fakeRepo) SaveOTPChallenge(_ context.Context, ch models.OTPChallenge) error {
	f.challenges[ch.ID] = ch
	return nil
}

func (f *fakeRepo) GetOTPChallenge(_ context.Context, id string) (*models.OTPChallenge, error) {
	ch, ok := f.challenges[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "otp challenge", IDs: []string{id}}
	}
	return &ch, nil
}

func (f *fakeRepo) ConsumeOTPChallenge(_ context.Context, id string) error {
	ch, ok := f.challenges[id]
	if !ok || ch.Consumed {
		return &models.NotFoundError{Resource: "otp challenge", IDs: []string{id}}
	}
	ch.Consumed = true
	f.challenges[id] = ch
	return nil
}

func (f *fakeRepo) PurgeExpiredOTPs(_ context.Context, now time.Time) (int64, error) {
	var removed int64
	for id, ch := range f.challenges {
		if ch.Consumed || ch.ExpiresAt.Before(now) {
			delete(f.challenges, id)
			removed++
		}
	}
	return removed, nil
}

type fakeGateway struct {
	sent []messaging.SendOTPRequest
	err  error
}

func (f *fakeGateway) SendOTP(_ context.Context, req messaging.SendOTPRequest) (*messaging.SendOTPResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, req)
	return &messaging.SendOTPResponse{MessageID: "msg-1", Status: "queued"}, nil
}

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
		OTPTTL:     5 * time.Minute,
		OTPDigits:  6,
	}
}

func seedUser(t *testing.T, repo *fakeRepo, phone, pin string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	user := models.User{ID: "user-1", OrgID: "org-1", Phone: phone, PINHash: string(hash)}
	repo.users[phone] = user
	return user
}

func TestLoginWithPIN(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "+220555", "4321")
	svc := NewService(repo, &fakeGateway{}, testConfig(), nil)

	token, err := svc.LoginWithPIN(context.Background(), "+220555", "4321")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.OrgID != "org-1" || claims.UserID != "user-1" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLoginWithWrongPIN(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "+220555", "4321")
	svc := NewService(repo, &fakeGateway{}, testConfig(), nil)

	if _, err := svc.LoginWithPIN(context.Background(), "+220555", "9999"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownUserDoesNotLeakExistence(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeGateway{}, testConfig(), nil)

	if _, err := svc.LoginWithPIN(context.Background(), "+000", "1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected uniform ErrInvalidCredentials, got %v", err)
	}
}

func TestOTPRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "+220555", "4321")
	gateway := &fakeGateway{}
	svc := NewService(repo, gateway, testConfig(), nil)

	challengeID, err := svc.RequestOTP(context.Background(), "+220555")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	if len(gateway.sent) != 1 {
		t.Fatalf("otp was not delivered")
	}
	code := gateway.sent[0].Code
	if len(code) != 6 {
		t.Fatalf("code %q should have 6 digits", code)
	}

	token, err := svc.VerifyOTP(context.Background(), challengeID, code)
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if _, err := svc.ParseToken(token); err != nil {
		t.Fatalf("parse token: %v", err)
	}

	// A consumed challenge cannot be replayed.
	if _, err := svc.VerifyOTP(context.Background(), challengeID, code); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("replayed challenge should fail, got %v", err)
	}
}

func TestOTPSurvivesTransientUserLookupFailure(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "+220555", "4321")
	gateway := &fakeGateway{}
	svc := NewService(repo, gateway, testConfig(), nil)

	challengeID, err := svc.RequestOTP(context.Background(), "+220555")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	code := gateway.sent[0].Code

	repo.userErr = errors.New("connection reset")
	if _, err := svc.VerifyOTP(context.Background(), challengeID, code); err == nil {
		t.Fatal("expected verify to fail while the user store is down")
	}
	if repo.challenges[challengeID].Consumed {
		t.Fatal("challenge must not be burned by a failed user lookup")
	}

	// Once the store recovers the same code still works.
	repo.userErr = nil
	if _, err := svc.VerifyOTP(context.Background(), challengeID, code); err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
}

func TestOTPExpiry(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "+220555", "4321")
	gateway := &fakeGateway{}
	svc := NewService(repo, gateway, testConfig(), nil)

	challengeID, err := svc.RequestOTP(context.Background(), "+220555")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	if _, err := svc.VerifyOTP(context.Background(), challengeID, gateway.sent[0].Code); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expired challenge should fail, got %v", err)
	}
}

func TestAPIKeyIssueAndVerify(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeGateway{}, testConfig(), nil)

	plaintext, key, err := svc.IssueAPIKey(context.Background(), "org-7", "ci")
	if err != nil {
		t.Fatalf("issue key: %v", err)
	}
	if key.KeyHash == plaintext {
		t.Fatal("plaintext must not be stored")
	}

	orgID, err := svc.VerifyAPIKey(context.Background(), plaintext)
	if err != nil {
		t.Fatalf("verify key: %v", err)
	}
	if orgID != "org-7" {
		t.Errorf("org = %q, want org-7", orgID)
	}

	if _, err := svc.VerifyAPIKey(context.Background(), "dfk_bogus"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bogus key should fail, got %v", err)
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	repo := newFakeRepo()
	seedUser(t, repo, "+220555", "4321")
	svc := NewService(repo, &fakeGateway{}, testConfig(), nil)

	token, err := svc.LoginWithPIN(context.Background(), "+220555", "4321")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	other := NewService(repo, &fakeGateway{}, config.AuthConfig{JWTSecret: "other", SessionTTL: time.Hour, OTPTTL: time.Minute, OTPDigits: 6}, nil)
	if _, err := other.ParseToken(token); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("token signed with a different secret should fail, got %v", err)
	}
}
