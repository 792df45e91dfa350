package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Reserve atomically claims a canonical identifier for an owner key. It
// returns true when this call inserted the identifier and false when the
// identifier was already registered, whoever owns it.
func (s *Store) Reserve(ctx context.Context, canonicalID, ownerKey string) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO sku_registry (canonical_id, owner_key, created_at)
         VALUES (?, ?, ?)
         ON CONFLICT (canonical_id) DO NOTHING`,
		canonicalID,
		ownerKey,
		now,
	)
	if err != nil {
		return false, wrapErr("reserve identifier", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("reserve identifier", err)
	}
	return affected > 0, nil
}

// LookupOwner returns the owner key registered for a canonical identifier.
func (s *Store) LookupOwner(ctx context.Context, canonicalID string) (string, bool, error) {
	ctx = ensureContext(ctx)
	var owner string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT owner_key FROM sku_registry WHERE canonical_id = ?`,
		canonicalID,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapErr("lookup identifier owner", err)
	}
	return owner, true, nil
}

// CountIdentifiers returns the number of registered canonical identifiers.
func (s *Store) CountIdentifiers(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sku_registry`).Scan(&count); err != nil {
		return 0, wrapErr("count identifiers", err)
	}
	return count, nil
}
