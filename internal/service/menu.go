package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
)

type MenuService struct {
	repo    MenuRepository
	state   *State
	changes changes
}

func NewMenuService(state *State, repo MenuRepository, publisher ChangePublisher) *MenuService {
	return &MenuService{repo: repo, state: state, changes: changes{publisher: publisher, source: state.Source()}}
}

// List returns the catalog. Unless all is set, unavailable items are hidden.
func (s *MenuService) List(category domain.MenuCategory, all bool) []domain.MenuItem {
	items := s.state.Menu()
	out := make([]domain.MenuItem, 0, len(items))
	for _, m := range items {
		if !all && !m.IsAvailable {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s *MenuService) Get(id string) (domain.MenuItem, error) {
	m, ok := s.state.MenuItem(id)
	if !ok {
		return domain.MenuItem{}, fmt.Errorf("menu item %s: %w", id, ErrNotFound)
	}
	return m, nil
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func validateMenuItem(m domain.MenuItem) error {
	switch {
	case !m.Category.Valid():
		return fmt.Errorf("category %q: %w", m.Category, ErrInvalidInput)
	case m.Price.IsNegative():
		return fmt.Errorf("negative price: %w", ErrInvalidInput)
	case m.SpicyLevel < 0 || m.SpicyLevel > 3:
		return fmt.Errorf("spicy level %d: %w", m.SpicyLevel, ErrInvalidInput)
	case m.Names[domain.LangDutch] == "":
		return fmt.Errorf("dutch name required: %w", ErrInvalidInput)
	}
	return nil
}

// Create adds an item. Without an id one is derived from the Dutch name.
func (s *MenuService) Create(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	if err := validateMenuItem(item); err != nil {
		return domain.MenuItem{}, err
	}
	if item.ID == "" {
		item.ID = slug(item.Names[domain.LangDutch])
	}
	if item.ID == "" {
		return domain.MenuItem{}, fmt.Errorf("menu item id: %w", ErrInvalidInput)
	}
	if _, exists := s.state.MenuItem(item.ID); exists {
		return domain.MenuItem{}, fmt.Errorf("menu item %s already exists: %w", item.ID, ErrInvalidInput)
	}
	s.state.PutMenuItem(item)
	s.store(ctx, item, domain.OpInsert)
	return item, nil
}

func (s *MenuService) Update(ctx context.Context, id string, patch domain.MenuItemPatch) (domain.MenuItem, error) {
	current, ok := s.state.MenuItem(id)
	if !ok {
		return domain.MenuItem{}, fmt.Errorf("menu item %s: %w", id, ErrNotFound)
	}
	next := patch.Apply(current)
	if err := validateMenuItem(next); err != nil {
		return domain.MenuItem{}, err
	}
	s.state.PutMenuItem(next)
	s.store(ctx, next, domain.OpUpdate)
	return next, nil
}

// ToggleAvailability flips the sold-out flag.
func (s *MenuService) ToggleAvailability(ctx context.Context, id string) (domain.MenuItem, error) {
	current, ok := s.state.MenuItem(id)
	if !ok {
		return domain.MenuItem{}, fmt.Errorf("menu item %s: %w", id, ErrNotFound)
	}
	available := !current.IsAvailable
	return s.Update(ctx, id, domain.MenuItemPatch{IsAvailable: &available})
}

// Delete removes an item from the catalog. Orders keep their own copies of
// name and price.
func (s *MenuService) Delete(ctx context.Context, id string) error {
	if !s.state.RemoveMenuItem(id) {
		return fmt.Errorf("menu item %s: %w", id, ErrNotFound)
	}
	if s.repo != nil {
		if _, err := s.repo.DeleteMenuItem(ctx, id); err != nil {
			log.WithError(err).WithField("item", id).Error("failed to delete menu item")
		}
	}
	s.state.Persist(ctx, domain.EntityMenuItem)
	s.changes.emit(ctx, domain.EntityMenuItem, domain.OpDelete, id, nil)
	return nil
}

func (s *MenuService) store(ctx context.Context, item domain.MenuItem, op domain.ChangeOp) {
	if s.repo != nil {
		if err := s.repo.UpsertMenuItem(ctx, &item); err != nil {
			log.WithError(err).WithField("item", item.ID).Error("failed to store menu item")
		}
	}
	s.state.Persist(ctx, domain.EntityMenuItem)
	s.changes.emit(ctx, domain.EntityMenuItem, op, item.ID, item)
}

var _ MenuServiceInterface = (*MenuService)(nil)
