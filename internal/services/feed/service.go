package feed

import (
	"context"
	"errors"

	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/model"
	pgrepo "github.com/kolotovalexander/znakomstva-shahter/internal/repo/postgres"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrCycleComplete = errors.New("browsing cycle complete")
)

type Store interface {
	NextCandidate(ctx context.Context, viewerID, afterID int64, exclude []int64) (model.Profile, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Next returns the following card of the browsing cycle. afterID is the
// previously shown candidate, exclude lists ids already acted on within
// the cycle. ErrCycleComplete means the pool is exhausted and the caller
// should start a fresh cycle.
func (s *Service) Next(ctx context.Context, viewerID, afterID int64, exclude []int64) (model.Profile, error) {
	if viewerID <= 0 {
		return model.Profile{}, ErrValidation
	}

	candidate, err := s.store.NextCandidate(ctx, viewerID, afterID, exclude)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNoCandidates) {
			return model.Profile{}, ErrCycleComplete
		}
		return model.Profile{}, err
	}

	return candidate, nil
}
