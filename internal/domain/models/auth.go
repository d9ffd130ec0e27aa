package models

import "time"

// Organization is a tenant. Rate limits and custom feeds are scoped to it.
type Organization struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	RateRPS   float64   `bson:"rate_rps" json:"rate_rps"`
	RateBurst int       `bson:"rate_burst" json:"rate_burst"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// User belongs to one organization and authenticates with a PIN or OTP.
type User struct {
	ID        string    `bson:"_id" json:"id"`
	OrgID     string    `bson:"org_id" json:"org_id"`
	Phone     string    `bson:"phone" json:"phone"`
	PINHash   string    `bson:"pin_hash" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// APIKey is a long-lived credential for machine callers. Only the hash is
// stored; the plaintext is shown once at issuance.
type APIKey struct {
	ID        string    `bson:"_id" json:"id"`
	OrgID     string    `bson:"org_id" json:"org_id"`
	Label     string    `bson:"label" json:"label"`
	KeyHash   string    `bson:"key_hash" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	Revoked   bool      `bson:"revoked" json:"revoked"`
}

// OTPChallenge is a pending one-time-password login attempt.
type OTPChallenge struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	CodeHash  string    `bson:"code_hash" json:"-"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	Consumed  bool      `bson:"consumed" json:"consumed"`
}

// UsageRecord accumulates per-organization request counts for the daily
// rollup job.
type UsageRecord struct {
	OrgID    string    `bson:"org_id" json:"org_id"`
	Day      string    `bson:"day" json:"day"`
	Requests int64     `bson:"requests" json:"requests"`
	Denied   int64     `bson:"denied" json:"denied"`
	Updated  time.Time `bson:"updated" json:"updated"`
}

// ImportLog records the outcome of one bulk feed import run.
type ImportLog struct {
	RunID      string        `bson:"_id" json:"run_id"`
	OrgID      string        `bson:"org_id" json:"org_id"`
	SheetRange string        `bson:"sheet_range" json:"sheet_range"`
	Imported   int           `bson:"imported" json:"imported"`
	Skipped    int           `bson:"skipped" json:"skipped"`
	Duration   time.Duration `bson:"duration_ns" json:"duration_ns"`
	StartedAt  time.Time     `bson:"started_at" json:"started_at"`
}
