package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/model"
)

var ErrNoCandidates = errors.New("no candidates left")

type FeedRepo struct {
	pool *pgxpool.Pool
}

func NewFeedRepo(pool *pgxpool.Pool) *FeedRepo {
	return &FeedRepo{pool: pool}
}

// NextCandidate walks active profiles in ascending user_id order, keyset
// style: afterID is the last card already shown, exclude holds the ids
// passed or liked within the current browsing cycle. Candidates must fit
// the viewer's gender preference and vice versa; an unset or "any"
// preference matches everyone.
func (r *FeedRepo) NextCandidate(ctx context.Context, viewerID, afterID int64, exclude []int64) (model.Profile, error) {
	if viewerID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid viewer id")
	}
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}
	if exclude == nil {
		exclude = []int64{}
	}

	var p model.Profile
	err := r.pool.QueryRow(ctx, `
SELECT
	p.user_id,
	COALESCE(p.username, ''),
	COALESCE(p.display_name, ''),
	COALESCE(p.age, 0),
	COALESCE(p.gender, ''),
	COALESCE(p.preferred_gender, ''),
	COALESCE(p.bio, ''),
	COALESCE(p.photo_file_id, ''),
	p.status,
	p.created_at,
	p.updated_at
FROM profiles AS p
JOIN profiles AS v ON v.user_id = $1
WHERE
	p.status = 'active'
	AND p.user_id <> $1
	AND p.user_id > $2
	AND p.user_id <> ALL($3)
	AND (v.preferred_gender IS NULL OR v.preferred_gender = 'any' OR v.preferred_gender = p.gender)
	AND (p.preferred_gender IS NULL OR p.preferred_gender = 'any' OR p.preferred_gender = v.gender)
	AND NOT EXISTS (
		SELECT 1
		FROM likes l
		WHERE l.liker_id = $1 AND l.likee_id = p.user_id
	)
ORDER BY p.user_id
LIMIT 1
`, viewerID, afterID, exclude).Scan(
		&p.UserID,
		&p.Username,
		&p.DisplayName,
		&p.Age,
		&p.Gender,
		&p.PreferredGender,
		&p.Bio,
		&p.PhotoFileID,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrNoCandidates
		}
		return model.Profile{}, fmt.Errorf("next feed candidate: %w", err)
	}

	return p, nil
}
