package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
)

type CartService struct {
	store    CartStore
	sessions SessionStore
	state    *State
}

func NewCartService(store CartStore, sessions SessionStore, state *State) *CartService {
	return &CartService{store: store, sessions: sessions, state: state}
}

func (s *CartService) Get(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	lines, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return lines, nil
}

// Add puts quantity units of an item in the cart. An item already present is
// incremented in place so the line order stays stable.
func (s *CartService) Add(ctx context.Context, sessionID, itemID string, quantity int) ([]domain.CartLine, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity %d: %w", quantity, ErrInvalidInput)
	}
	item, ok := s.state.MenuItem(itemID)
	if !ok {
		return nil, fmt.Errorf("menu item %s: %w", itemID, ErrNotFound)
	}
	if !item.IsAvailable {
		return nil, fmt.Errorf("menu item %s is not available: %w", itemID, ErrInvalidInput)
	}
	lines, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, sessionID, addLine(lines, itemID, quantity))
}

// Update changes a line by delta. Reaching zero removes it.
func (s *CartService) Update(ctx context.Context, sessionID, itemID string, delta int) ([]domain.CartLine, error) {
	lines, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next, ok := updateLine(lines, itemID, delta)
	if !ok {
		if delta <= 0 {
			return nil, fmt.Errorf("cart line %s: %w", itemID, ErrNotFound)
		}
		return s.Add(ctx, sessionID, itemID, delta)
	}
	return s.save(ctx, sessionID, next)
}

func (s *CartService) Remove(ctx context.Context, sessionID, itemID string) ([]domain.CartLine, error) {
	lines, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.MenuItemID != itemID {
			next = append(next, l)
		}
	}
	return s.save(ctx, sessionID, next)
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteCart(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Quote prices the cart against the live catalog in the session language.
func (s *CartService) Quote(ctx context.Context, sessionID string, t domain.DeliveryType) (Quote, error) {
	lines, err := s.Get(ctx, sessionID)
	if err != nil {
		return Quote{}, err
	}
	return PriceCart(lines, s.state.MenuItem, t, s.state.Settings().Policy(), s.language(ctx, sessionID)), nil
}

func (s *CartService) language(ctx context.Context, sessionID string) domain.Language {
	if s.sessions == nil {
		return domain.LangDutch
	}
	lang, err := s.sessions.Language(ctx, sessionID)
	if err != nil {
		log.WithError(err).WithField("session", sessionID).Debug("falling back to default language")
		return domain.LangDutch
	}
	return lang
}

func (s *CartService) save(ctx context.Context, sessionID string, lines []domain.CartLine) ([]domain.CartLine, error) {
	if err := s.store.SaveCart(ctx, sessionID, lines); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return lines, nil
}

// ItemCount is the number of units across all lines.
func ItemCount(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func addLine(lines []domain.CartLine, itemID string, quantity int) []domain.CartLine {
	next := append([]domain.CartLine(nil), lines...)
	for i := range next {
		if next[i].MenuItemID == itemID {
			next[i].Quantity += quantity
			return next
		}
	}
	return append(next, domain.CartLine{MenuItemID: itemID, Quantity: quantity})
}

func updateLine(lines []domain.CartLine, itemID string, delta int) ([]domain.CartLine, bool) {
	next := make([]domain.CartLine, 0, len(lines))
	found := false
	for _, l := range lines {
		if l.MenuItemID == itemID {
			found = true
			l.Quantity += delta
			if l.Quantity <= 0 {
				continue
			}
		}
		next = append(next, l)
	}
	return next, found
}

var _ CartServiceInterface = (*CartService)(nil)
