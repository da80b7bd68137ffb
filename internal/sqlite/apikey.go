package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownKey is returned when a token matches no API key.
var ErrUnknownKey = errors.New("unauthorized: invalid token")

// APIKeyRepository maps bearer tokens to tenants. Only token hashes are stored.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// HashToken returns the stored form of a token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Add registers token for tenantID.
func (r *APIKeyRepository) Add(ctx context.Context, token, tenantID, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, tenant_id, description) VALUES (?, ?, ?)`,
		HashToken(token), tenantID, description,
	)
	if err != nil {
		return writeError(err, "add api key")
	}
	return nil
}

// ResolveTenant returns the tenant owning token and records its use.
func (r *APIKeyRepository) ResolveTenant(ctx context.Context, token string) (string, error) {
	hash := HashToken(token)
	var tenantID string
	err := r.db.QueryRowContext(ctx, `SELECT tenant_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&tenantID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && tenantID == "") {
		return "", ErrUnknownKey
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	_, _ = r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash)
	return tenantID, nil
}
