package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

// LockPair takes a transaction-scoped advisory lock on the unordered user
// pair. Both directions of a mutual like map to the same lock, so the
// second transaction always sees the first one's committed like row and
// the reciprocity check can never miss it.
func (r *LikeRepo) LockPair(ctx context.Context, tx pgx.Tx, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 {
		return fmt.Errorf("invalid lock payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
SELECT pg_advisory_xact_lock(hashint8(LEAST($1::bigint, $2::bigint)), hashint8(GREATEST($1::bigint, $2::bigint)))
`, userID, targetID); err != nil {
		return fmt.Errorf("lock like pair: %w", err)
	}

	return nil
}

// Insert records a like once. Returns false when the pair already exists.
func (r *LikeRepo) Insert(ctx context.Context, tx pgx.Tx, likerID, likeeID int64) (bool, error) {
	if likerID <= 0 || likeeID <= 0 {
		return false, fmt.Errorf("invalid like payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	tag, err := tx.Exec(ctx, `
INSERT INTO likes (
	liker_id,
	likee_id,
	created_at
) VALUES ($1, $2, NOW())
ON CONFLICT (liker_id, likee_id) DO NOTHING
`, likerID, likeeID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *LikeRepo) Delete(ctx context.Context, tx pgx.Tx, likerID, likeeID int64) (bool, error) {
	if likerID <= 0 || likeeID <= 0 {
		return false, fmt.Errorf("invalid like delete payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	tag, err := tx.Exec(ctx, `
DELETE FROM likes
WHERE liker_id = $1 AND likee_id = $2
`, likerID, likeeID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteAuthoredBy removes the user's outgoing likes only. Likes received
// from other users stay untouched.
func (r *LikeRepo) DeleteAuthoredBy(ctx context.Context, tx pgx.Tx, likerID int64) (int64, error) {
	if likerID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	tag, err := tx.Exec(ctx, `
DELETE FROM likes
WHERE liker_id = $1
`, likerID)
	if err != nil {
		return 0, fmt.Errorf("delete authored likes: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *LikeRepo) DeleteInvolving(ctx context.Context, tx pgx.Tx, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	tag, err := tx.Exec(ctx, `
DELETE FROM likes
WHERE liker_id = $1 OR likee_id = $1
`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete likes involving user: %w", err)
	}

	return tag.RowsAffected(), nil
}
