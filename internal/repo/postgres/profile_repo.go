package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/enums"
	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `
	user_id,
	COALESCE(username, ''),
	COALESCE(display_name, ''),
	COALESCE(age, 0),
	COALESCE(gender, ''),
	COALESCE(preferred_gender, ''),
	COALESCE(bio, ''),
	COALESCE(photo_file_id, ''),
	status,
	created_at,
	updated_at`

// Upsert merges the patch into the stored row. A new row starts as draft
// unless the patch carries a status, so a full questionnaire commit lands
// as a single statement.
func (r *ProfileRepo) Upsert(ctx context.Context, patch model.ProfilePatch) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}
	if patch.UserID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid profile payload")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return model.Profile{}, fmt.Errorf("invalid profile status %q", *patch.Status)
	}

	query := `
INSERT INTO profiles (
	user_id,
	username,
	display_name,
	age,
	gender,
	preferred_gender,
	bio,
	photo_file_id,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, 'draft'), NOW(), NOW())
ON CONFLICT (user_id) DO UPDATE SET
	username = COALESCE(EXCLUDED.username, profiles.username),
	display_name = COALESCE(EXCLUDED.display_name, profiles.display_name),
	age = COALESCE(EXCLUDED.age, profiles.age),
	gender = COALESCE(EXCLUDED.gender, profiles.gender),
	preferred_gender = COALESCE(EXCLUDED.preferred_gender, profiles.preferred_gender),
	bio = COALESCE(EXCLUDED.bio, profiles.bio),
	photo_file_id = COALESCE(EXCLUDED.photo_file_id, profiles.photo_file_id),
	status = COALESCE($9, profiles.status),
	updated_at = NOW()
RETURNING` + profileColumns

	var gender, preferred, status *string
	if patch.Gender != nil {
		v := patch.Gender.String()
		gender = &v
	}
	if patch.PreferredGender != nil {
		v := patch.PreferredGender.String()
		preferred = &v
	}
	if patch.Status != nil {
		v := patch.Status.String()
		status = &v
	}

	var p model.Profile
	err := r.pool.QueryRow(
		ctx,
		query,
		patch.UserID,
		patch.Username,
		patch.DisplayName,
		patch.Age,
		gender,
		preferred,
		patch.Bio,
		patch.PhotoFileID,
		status,
	).Scan(
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
		return model.Profile{}, fmt.Errorf("upsert profile: %w", err)
	}

	return p, nil
}

func (r *ProfileRepo) Get(ctx context.Context, userID int64) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}

	var p model.Profile
	err := r.pool.QueryRow(ctx, `
SELECT`+profileColumns+`
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID).Scan(
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
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return p, nil
}

func (r *ProfileRepo) SetStatus(ctx context.Context, userID int64, status enums.ProfileStatus) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || !status.Valid() {
		return fmt.Errorf("invalid status payload")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE profiles
SET status = $2, updated_at = NOW()
WHERE user_id = $1
`, userID, status.String())
	if err != nil {
		return fmt.Errorf("set profile status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *ProfileRepo) SetStatusTx(ctx context.Context, tx pgx.Tx, userID int64, status enums.ProfileStatus) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if userID <= 0 || !status.Valid() {
		return fmt.Errorf("invalid status payload")
	}

	if _, err := tx.Exec(ctx, `
UPDATE profiles
SET status = $2, updated_at = NOW()
WHERE user_id = $1
`, userID, status.String()); err != nil {
		return fmt.Errorf("set profile status: %w", err)
	}

	return nil
}

func (r *ProfileRepo) DeleteTx(ctx context.Context, tx pgx.Tx, userID int64) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	if _, err := tx.Exec(ctx, `
DELETE FROM profiles
WHERE user_id = $1
`, userID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	return nil
}

func (r *ProfileRepo) ListActiveIDs(ctx context.Context) ([]int64, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT user_id
FROM profiles
WHERE status = 'active'
ORDER BY user_id
`)
	if err != nil {
		return nil, fmt.Errorf("list active profiles: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan active profile id: %w", err)
		}
		ids = append(ids, id)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate active profiles: %w", rows.Err())
	}

	return ids, nil
}
