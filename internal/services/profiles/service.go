package profiles

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/enums"
	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/model"
	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/rules"
	pgrepo "github.com/kolotovalexander/znakomstva-shahter/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

type Store interface {
	UpsertProfile(ctx context.Context, patch model.ProfilePatch) (model.Profile, error)
	GetProfile(ctx context.Context, userID int64) (model.Profile, error)
	SetStatus(ctx context.Context, userID int64, status enums.ProfileStatus) error
	DeleteProfile(ctx context.Context, userID int64) error
	ListActiveUserIDs(ctx context.Context) ([]int64, error)
}

// Draft is a fully collected questionnaire ready to be committed.
type Draft struct {
	UserID          int64
	Username        string
	DisplayName     string
	Age             int
	Gender          enums.Gender
	PreferredGender enums.GenderPreference
	Bio             string
	PhotoFileID     string
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Commit validates the whole draft, persists it and flips the profile to
// active in one go. Until Commit the user is invisible to browsing.
func (s *Service) Commit(ctx context.Context, draft Draft) (model.Profile, error) {
	if draft.UserID <= 0 {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is not configured")
	}

	name, err := rules.ValidateName(draft.DisplayName)
	if err != nil {
		return model.Profile{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	age, err := rules.ValidateAgeValue(draft.Age)
	if err != nil {
		return model.Profile{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if !draft.Gender.Valid() {
		return model.Profile{}, fmt.Errorf("%w: unknown gender %q", ErrValidation, draft.Gender)
	}
	if !draft.PreferredGender.Valid() {
		return model.Profile{}, fmt.Errorf("%w: unknown preference %q", ErrValidation, draft.PreferredGender)
	}
	bio, err := rules.ValidateBio(draft.Bio)
	if err != nil {
		return model.Profile{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	photo, err := rules.ValidatePhoto(draft.PhotoFileID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	// Activation rides in the same upsert, so the store never observes a
	// fully filled profile that is stuck between draft and active.
	status := enums.ProfileStatusActive
	profile, err := s.store.UpsertProfile(ctx, model.ProfilePatch{
		UserID:          draft.UserID,
		Username:        &draft.Username,
		DisplayName:     &name,
		Age:             &age,
		Gender:          &draft.Gender,
		PreferredGender: &draft.PreferredGender,
		Bio:             &bio,
		PhotoFileID:     &photo,
		Status:          &status,
	})
	if err != nil {
		return model.Profile{}, fmt.Errorf("commit profile draft: %w", err)
	}

	return profile, nil
}

// SetVisible hides the profile from browsing or brings it back. Only a
// completed profile can be toggled, drafts stay drafts.
func (s *Service) SetVisible(ctx context.Context, userID int64, visible bool) error {
	if userID <= 0 {
		return ErrValidation
	}

	profile, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if profile.Status == enums.ProfileStatusDraft {
		return ErrValidation
	}

	status := enums.ProfileStatusHidden
	if visible {
		status = enums.ProfileStatusActive
	}
	if profile.Status == status {
		return nil
	}

	if err := s.store.SetStatus(ctx, userID, status); err != nil {
		return fmt.Errorf("set profile visibility: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, userID int64) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, ErrValidation
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, err
	}

	return profile, nil
}

func (s *Service) Delete(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrValidation
	}
	return s.store.DeleteProfile(ctx, userID)
}

func (s *Service) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	return s.store.ListActiveUserIDs(ctx)
}

// ContactLink builds the address shown to both sides of a match. A
// username beats the raw id deep link.
func ContactLink(p model.Profile) string {
	if p.Username != "" {
		return "https://t.me/" + p.Username
	}
	return "tg://user?id=" + strconv.FormatInt(p.UserID, 10)
}
