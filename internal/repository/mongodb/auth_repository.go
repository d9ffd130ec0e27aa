package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/dairyfeed/internal/domain/models"
)

// AuthRepository defines persistence for tenants, users and credentials.
type AuthRepository interface {
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)

	SaveAPIKey(ctx context.Context, key models.APIKey) error
	FindAPIKeysByOrg(ctx context.Context, orgID string) ([]models.APIKey, error)
	ListActiveAPIKeys(ctx context.Context) ([]models.APIKey, error)

	SaveOTPChallenge(ctx context.Context, ch models.OTPChallenge) error
	GetOTPChallenge(ctx context.Context, id string) (*models.OTPChallenge, error)
	ConsumeOTPChallenge(ctx context.Context, id string) error
	PurgeExpiredOTPs(ctx context.Context, now time.Time) (int64, error)
}

// MongoAuthRepository implements AuthRepository over the tenant collections.
type MongoAuthRepository struct {
	db *mongo.Database
}

// NewMongoAuthRepository builds the auth repository from an existing client.
func NewMongoAuthRepository(client *mongo.Client, dbName string) *MongoAuthRepository {
	return &MongoAuthRepository{db: client.Database(dbName)}
}

// GetOrganization fetches a tenant record.
func (r *MongoAuthRepository) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.Collection("organizations").FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Resource: "organization", IDs: []string{id}}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch organization: %w", err)
	}
	return &org, nil
}

// GetUserByPhone fetches the user registered under a phone number.
func (r *MongoAuthRepository) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := r.db.Collection("users").FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Resource: "user", IDs: []string{phone}}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user by phone: %w", err)
	}
	return &user, nil
}

// GetUser fetches a user by identifier.
func (r *MongoAuthRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Resource: "user", IDs: []string{id}}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	return &user, nil
}

// SaveAPIKey stores a freshly issued API key record.
func (r *MongoAuthRepository) SaveAPIKey(ctx context.Context, key models.APIKey) error {
	if _, err := r.db.Collection("api_keys").InsertOne(ctx, key); err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

// FindAPIKeysByOrg lists an organization's keys, revoked ones included.
func (r *MongoAuthRepository) FindAPIKeysByOrg(ctx context.Context, orgID string) ([]models.APIKey, error) {
	cursor, err := r.db.Collection("api_keys").Find(ctx, bson.M{"org_id": orgID})
	if err != nil {
		return nil, fmt.Errorf("query api keys: %w", err)
	}
	defer cursor.Close(ctx)

	var keys []models.APIKey
	if err := cursor.All(ctx, &keys); err != nil {
		return nil, fmt.Errorf("decode api keys: %w", err)
	}
	return keys, nil
}

// ListActiveAPIKeys returns every non-revoked key. The auth service matches
// presented keys against the stored hashes.
func (r *MongoAuthRepository) ListActiveAPIKeys(ctx context.Context) ([]models.APIKey, error) {
	cursor, err := r.db.Collection("api_keys").Find(ctx, bson.M{"revoked": false})
	if err != nil {
		return nil, fmt.Errorf("query active api keys: %w", err)
	}
	defer cursor.Close(ctx)

	var keys []models.APIKey
	if err := cursor.All(ctx, &keys); err != nil {
		return nil, fmt.Errorf("decode active api keys: %w", err)
	}
	return keys, nil
}

// SaveOTPChallenge stores a pending OTP login attempt.
func (r *MongoAuthRepository) SaveOTPChallenge(ctx context.Context, ch models.OTPChallenge) error {
	if _, err := r.db.Collection("otp_challenges").InsertOne(ctx, ch); err != nil {
		return fmt.Errorf("insert otp challenge: %w", err)
	}
	return nil
}

// GetOTPChallenge fetches a pending challenge by identifier.
func (r *MongoAuthRepository) GetOTPChallenge(ctx context.Context, id string) (*models.OTPChallenge, error) {
	var ch models.OTPChallenge
	err := r.db.Collection("otp_challenges").FindOne(ctx, bson.M{"_id": id}).Decode(&ch)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Resource: "otp challenge", IDs: []string{id}}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch otp challenge: %w", err)
	}
	return &ch, nil
}

// ConsumeOTPChallenge marks a challenge used so it cannot be replayed.
func (r *MongoAuthRepository) ConsumeOTPChallenge(ctx context.Context, id string) error {
	res, err := r.db.Collection("otp_challenges").UpdateOne(ctx,
		bson.M{"_id": id, "consumed": false},
		bson.M{"$set": bson.M{"consumed": true}})
	if err != nil {
		return fmt.Errorf("consume otp challenge: %w", err)
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Resource: "otp challenge", IDs: []string{id}}
	}
	return nil
}

// PurgeExpiredOTPs deletes consumed and expired challenges, returning the
// number removed. Called by the nightly maintenance job.
func (r *MongoAuthRepository) PurgeExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.Collection("otp_challenges").DeleteMany(ctx, bson.M{
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$lt": now}},
			bson.M{"consumed": true},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("purge otp challenges: %w", err)
	}
	return res.DeletedCount, nil
}
