package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
)

type SettingsService struct {
	repo    SettingsRepository
	state   *State
	changes changes
}

func NewSettingsService(state *State, repo SettingsRepository, publisher ChangePublisher) *SettingsService {
	return &SettingsService{repo: repo, state: state, changes: changes{publisher: publisher, source: state.Source()}}
}

func (s *SettingsService) Get() domain.RestaurantSettings {
	return s.state.Settings()
}

func validateSettings(st domain.RestaurantSettings) error {
	z := st.DeliveryZones
	if z.Fee.IsNegative() || z.MinOrder.IsNegative() || z.FreeFrom.IsNegative() {
		return fmt.Errorf("delivery amounts must not be negative: %w", ErrInvalidInput)
	}
	for _, code := range z.PostalCodes {
		if len(code) != 4 {
			return fmt.Errorf("postal prefix %q: %w", code, ErrInvalidInput)
		}
	}
	return nil
}

// Update applies the patch locally and writes each touched group on its own.
// A failed group write is logged and does not undo the others.
func (s *SettingsService) Update(ctx context.Context, patch domain.SettingsPatch) (domain.RestaurantSettings, error) {
	next := patch.Apply(s.state.Settings())
	if err := validateSettings(next); err != nil {
		return domain.RestaurantSettings{}, err
	}
	s.state.SetSettings(next)
	s.writeGroups(ctx, next, patch.Groups())
	return next, nil
}

// Reset returns every group to its built-in default.
func (s *SettingsService) Reset(ctx context.Context) domain.RestaurantSettings {
	defaults := domain.DefaultSettings()
	s.state.SetSettings(defaults)
	s.writeGroups(ctx, defaults, domain.SettingsGroups)
	return defaults
}

func (s *SettingsService) writeGroups(ctx context.Context, st domain.RestaurantSettings, groups []string) {
	for _, group := range groups {
		value, err := st.Group(group)
		if err != nil {
			continue
		}
		if s.repo != nil {
			if err := s.repo.SaveSettingsGroup(ctx, group, value); err != nil {
				log.WithError(err).WithField("group", group).Error("failed to store settings group")
			}
		}
		s.changes.emit(ctx, domain.EntitySettings, domain.OpUpdate, group, value)
	}
	s.state.Persist(ctx, domain.EntitySettings)
}

var _ SettingsServiceInterface = (*SettingsService)(nil)
