package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/enums"
	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/model"
)

// LikeOutcome is the result of a single like write. AlreadyLiked and
// Mutual never hold true together: a repeated like is a no-op and cannot
// create the match a second time.
type LikeOutcome struct {
	AlreadyLiked bool
	Mutual       bool
}

// Store bundles the repositories behind the service-facing contracts and
// owns transaction boundaries for multi-table writes.
type Store struct {
	pool     *pgxpool.Pool
	profiles *ProfileRepo
	likes    *LikeRepo
	matches  *MatchRepo
	feed     *FeedRepo
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:     pool,
		profiles: NewProfileRepo(pool),
		likes:    NewLikeRepo(pool),
		matches:  NewMatchRepo(pool),
		feed:     NewFeedRepo(pool),
	}
}

func (s *Store) UpsertProfile(ctx context.Context, patch model.ProfilePatch) (model.Profile, error) {
	return s.profiles.Upsert(ctx, patch)
}

func (s *Store) GetProfile(ctx context.Context, userID int64) (model.Profile, error) {
	return s.profiles.Get(ctx, userID)
}

func (s *Store) SetStatus(ctx context.Context, userID int64, status enums.ProfileStatus) error {
	return s.profiles.SetStatus(ctx, userID, status)
}

func (s *Store) DeleteProfile(ctx context.Context, userID int64) error {
	return WithTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := s.likes.DeleteInvolving(txCtx, tx, userID); err != nil {
			return err
		}
		if _, err := s.matches.DeleteInvolving(txCtx, tx, userID); err != nil {
			return err
		}
		return s.profiles.DeleteTx(txCtx, tx, userID)
	})
}

func (s *Store) ListActiveUserIDs(ctx context.Context) ([]int64, error) {
	return s.profiles.ListActiveIDs(ctx)
}

// RecordLike inserts the like and the match row, when the like turned out
// mutual, in one transaction. The pair advisory lock serializes the two
// directions of a like: under READ COMMITTED the like inserts alone do
// not conflict, and without the lock two concurrent mutual likes could
// each miss the other's uncommitted row and produce no match at all.
// With it the later transaction waits out the earlier one and finds the
// committed reverse like, so exactly one side observes Mutual.
func (s *Store) RecordLike(ctx context.Context, likerID, likeeID int64) (LikeOutcome, error) {
	var outcome LikeOutcome

	err := WithTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		var err error
		outcome, err = s.recordLikeTx(txCtx, tx, likerID, likeeID)
		return err
	})
	if err != nil {
		return LikeOutcome{}, err
	}

	return outcome, nil
}

func (s *Store) recordLikeTx(ctx context.Context, tx pgx.Tx, likerID, likeeID int64) (LikeOutcome, error) {
	if err := s.likes.LockPair(ctx, tx, likerID, likeeID); err != nil {
		return LikeOutcome{}, err
	}

	inserted, err := s.likes.Insert(ctx, tx, likerID, likeeID)
	if err != nil {
		return LikeOutcome{}, err
	}
	if !inserted {
		return LikeOutcome{AlreadyLiked: true}, nil
	}

	mutual, err := s.matches.CreateIfMutualLike(ctx, tx, likerID, likeeID)
	if err != nil {
		return LikeOutcome{}, err
	}

	return LikeOutcome{Mutual: mutual}, nil
}

func (s *Store) RemoveLike(ctx context.Context, likerID, likeeID int64) error {
	return WithTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := s.likes.Delete(txCtx, tx, likerID, likeeID); err != nil {
			return err
		}
		_, err := s.matches.DeleteByUsers(txCtx, tx, likerID, likeeID)
		return err
	})
}

// ResetUser drops the user's authored likes and matches and sends the
// profile back to draft. Likes received from others survive the reset.
func (s *Store) ResetUser(ctx context.Context, userID int64) error {
	return WithTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := s.likes.DeleteAuthoredBy(txCtx, tx, userID); err != nil {
			return err
		}
		if _, err := s.matches.DeleteInvolving(txCtx, tx, userID); err != nil {
			return err
		}
		return s.profiles.SetStatusTx(txCtx, tx, userID, enums.ProfileStatusDraft)
	})
}

func (s *Store) NextCandidate(ctx context.Context, viewerID, afterID int64, exclude []int64) (model.Profile, error) {
	return s.feed.NextCandidate(ctx, viewerID, afterID, exclude)
}
