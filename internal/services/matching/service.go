package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/enums"
	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/model"
	pgrepo "github.com/kolotovalexander/znakomstva-shahter/internal/repo/postgres"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrInvalidTarget = errors.New("invalid like target")
)

type Store interface {
	RecordLike(ctx context.Context, likerID, likeeID int64) (pgrepo.LikeOutcome, error)
	RemoveLike(ctx context.Context, likerID, likeeID int64) error
	ResetUser(ctx context.Context, userID int64) error
	GetProfile(ctx context.Context, userID int64) (model.Profile, error)
}

type RateLimiter interface {
	AllowLike(ctx context.Context, userID int64) (int64, bool, error)
}

// Outcome reports what a like did. Mutual is true on at most one side of
// a pair, no matter how the two likes interleave.
type Outcome struct {
	Mutual        bool
	AlreadyLiked  bool
	TooFast       bool
	RetryAfterSec int64
	Counterpart   model.Profile
}

type Dependencies struct {
	Store       Store
	RateLimiter RateLimiter
}

type Service struct {
	store       Store
	rateLimiter RateLimiter
}

func NewService(deps Dependencies) *Service {
	return &Service{
		store:       deps.Store,
		rateLimiter: deps.RateLimiter,
	}
}

func (s *Service) Like(ctx context.Context, likerID, targetID int64) (Outcome, error) {
	if likerID <= 0 || targetID <= 0 {
		return Outcome{}, ErrValidation
	}
	if likerID == targetID {
		return Outcome{}, ErrInvalidTarget
	}
	if s.store == nil {
		return Outcome{}, fmt.Errorf("matching store is not configured")
	}

	target, err := s.store.GetProfile(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return Outcome{}, ErrInvalidTarget
		}
		return Outcome{}, fmt.Errorf("resolve like target: %w", err)
	}
	if target.Status != enums.ProfileStatusActive {
		return Outcome{}, ErrInvalidTarget
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowLike(ctx, likerID)
		if err != nil {
			return Outcome{}, fmt.Errorf("apply like rate limiter: %w", err)
		}
		if !allowed {
			return Outcome{TooFast: true, RetryAfterSec: retryAfter}, nil
		}
	}

	recorded, err := s.store.RecordLike(ctx, likerID, targetID)
	if err != nil {
		return Outcome{}, fmt.Errorf("record like: %w", err)
	}

	return Outcome{
		Mutual:       recorded.Mutual,
		AlreadyLiked: recorded.AlreadyLiked,
		Counterpart:  target,
	}, nil
}

func (s *Service) Unlike(ctx context.Context, likerID, targetID int64) error {
	if likerID <= 0 || targetID <= 0 || likerID == targetID {
		return ErrValidation
	}
	return s.store.RemoveLike(ctx, likerID, targetID)
}

// Reset removes the user's authored likes and matches and demotes the
// profile to draft. Incoming likes from others are kept.
func (s *Service) Reset(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrValidation
	}
	return s.store.ResetUser(ctx, userID)
}
