package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
)

// State is the in-memory cache of every entity the site serves. Commands
// update it first; the record store is written afterwards by the calling
// service and a failed write does not roll the cache back.
type State struct {
	mu           sync.RWMutex
	menu         []domain.MenuItem
	orders       map[string]domain.Order
	drivers      []domain.Driver
	reservations map[string]domain.Reservation
	settings     domain.RestaurantSettings
	content      []domain.SiteContent

	snapshots SnapshotStore
	source    string
	now       func() time.Time
}

func NewState(snapshots SnapshotStore) *State {
	return &State{
		menu:         domain.SeedMenu(),
		orders:       make(map[string]domain.Order),
		drivers:      domain.SeedDrivers(),
		reservations: make(map[string]domain.Reservation),
		settings:     domain.DefaultSettings(),
		snapshots:    snapshots,
		source:       uuid.NewString(),
		now:          time.Now,
	}
}

// Source identifies this process on the change stream.
func (s *State) Source() string {
	return s.source
}

func (s *State) Menu() []domain.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.MenuItem(nil), s.menu...)
}

func (s *State) MenuItem(id string) (domain.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.menu {
		if m.ID == id {
			return m, true
		}
	}
	return domain.MenuItem{}, false
}

func (s *State) PutMenuItem(item domain.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putMenuItemLocked(item)
}

func (s *State) putMenuItemLocked(item domain.MenuItem) {
	for i := range s.menu {
		if s.menu[i].ID == item.ID {
			s.menu[i] = item
			return
		}
	}
	s.menu = append(s.menu, item)
}

func (s *State) RemoveMenuItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.menu {
		if s.menu[i].ID == id {
			s.menu = append(s.menu[:i], s.menu[i+1:]...)
			return true
		}
	}
	return false
}

// Orders returns every cached order, newest first.
func (s *State) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *State) Order(id string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	return o, ok
}

func (s *State) PutOrder(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
}

// UpdateOrder applies fn to a copy of the order and stores the result when fn
// succeeds.
func (s *State) UpdateOrder(id string, fn func(o *domain.Order) error) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err := fn(&o); err != nil {
		return domain.Order{}, err
	}
	o.UpdatedAt = s.now()
	s.orders[id] = o
	return o, nil
}

func (s *State) Drivers() []domain.Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Driver(nil), s.drivers...)
}

func (s *State) Driver(id string) (domain.Driver, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.driverIndexLocked(id); i >= 0 {
		return s.drivers[i], true
	}
	return domain.Driver{}, false
}

func (s *State) driverIndexLocked(id string) int {
	for i := range s.drivers {
		if s.drivers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) PutDriver(d domain.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putDriverLocked(d)
}

func (s *State) putDriverLocked(d domain.Driver) {
	if i := s.driverIndexLocked(d.ID); i >= 0 {
		s.drivers[i] = d
		return
	}
	s.drivers = append(s.drivers, d)
}

func (s *State) RemoveDriver(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.driverIndexLocked(id); i >= 0 {
		s.drivers = append(s.drivers[:i], s.drivers[i+1:]...)
		return true
	}
	return false
}

// AssignDriver moves an order from its current driver to driverID. An empty
// driverID unassigns. The returned drivers are the ones whose counters moved.
func (s *State) AssignDriver(orderID, driverID string) (domain.Order, []domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if driverID != "" && s.driverIndexLocked(driverID) < 0 {
		return domain.Order{}, nil, fmt.Errorf("driver %s: %w", driverID, ErrNotFound)
	}
	if o.AssignedDriver == driverID {
		return o, nil, nil
	}
	// the driver of a closed order was already released
	if o.Status.Terminal() {
		return domain.Order{}, nil, fmt.Errorf("order %s is %s: %w", orderID, o.Status, ErrInvalidTransition)
	}

	var touched []domain.Driver
	if d, ok := s.releaseLocked(o.AssignedDriver); ok {
		touched = append(touched, d)
	}
	if d, ok := s.acquireLocked(driverID); ok {
		touched = append(touched, d)
	}
	o.AssignedDriver = driverID
	o.UpdatedAt = s.now()
	s.orders[orderID] = o
	return o, touched, nil
}

// acquireLocked puts one more delivery on a driver and marks them busy.
func (s *State) acquireLocked(driverID string) (domain.Driver, bool) {
	if driverID == "" {
		return domain.Driver{}, false
	}
	i := s.driverIndexLocked(driverID)
	if i < 0 {
		return domain.Driver{}, false
	}
	d := &s.drivers[i]
	d.ActiveDeliveries++
	d.Status = domain.DriverBusy
	return *d, true
}

// releaseLocked takes one delivery off a driver. A busy driver with nothing
// left goes back to available.
func (s *State) releaseLocked(driverID string) (domain.Driver, bool) {
	if driverID == "" {
		return domain.Driver{}, false
	}
	i := s.driverIndexLocked(driverID)
	if i < 0 {
		return domain.Driver{}, false
	}
	d := &s.drivers[i]
	if d.ActiveDeliveries > 0 {
		d.ActiveDeliveries--
	}
	if d.ActiveDeliveries == 0 && d.Status == domain.DriverBusy {
		d.Status = domain.DriverAvailable
	}
	return *d, true
}

// SetOrderStatus moves an order to status. The assigned driver is returned
// when their count changed.
func (s *State) SetOrderStatus(orderID string, status domain.OrderStatus, strict bool) (domain.Order, *domain.Driver, error) {
	if !status.Valid() {
		return domain.Order{}, nil, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if strict && o.Status != status && !domain.NextAllowed(o.Status, status) {
		return domain.Order{}, nil, fmt.Errorf("%s -> %s: %w", o.Status, status, ErrInvalidTransition)
	}
	o, driver := s.setStatusLocked(o, status)
	return o, driver, nil
}

// CompleteOpenOrder completes the order unless it is already completed or
// cancelled. changed is false when nothing happened.
func (s *State) CompleteOpenOrder(orderID string) (o domain.Order, driver *domain.Driver, changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, nil, false, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if o.Status.Terminal() {
		return o, nil, false, nil
	}
	o, driver = s.setStatusLocked(o, domain.StatusCompleted)
	return o, driver, true, nil
}

// setStatusLocked returns the driver whose count moved. Closing an order
// releases its driver and reopening a closed one takes the driver back.
func (s *State) setStatusLocked(o domain.Order, status domain.OrderStatus) (domain.Order, *domain.Driver) {
	var touched *domain.Driver
	switch {
	case status.Terminal() && !o.Status.Terminal():
		if d, ok := s.releaseLocked(o.AssignedDriver); ok {
			touched = &d
		}
	case !status.Terminal() && o.Status.Terminal():
		if d, ok := s.acquireLocked(o.AssignedDriver); ok {
			touched = &d
		}
	}
	o.Status = status
	o.UpdatedAt = s.now()
	s.orders[o.ID] = o
	return o, touched
}

func (s *State) Reservations() []domain.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Date+" "+out[i].Time, out[j].Date+" "+out[j].Time
		if a == b {
			return out[i].ID < out[j].ID
		}
		return a < b
	})
	return out
}

func (s *State) PutReservation(r domain.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[r.ID] = r
}

func (s *State) UpdateReservation(id string, fn func(r *domain.Reservation) error) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	if err := fn(&r); err != nil {
		return domain.Reservation{}, err
	}
	r.UpdatedAt = s.now()
	s.reservations[id] = r
	return r, nil
}

func (s *State) Settings() domain.RestaurantSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *State) SetSettings(settings domain.RestaurantSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

func (s *State) Content() []domain.SiteContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SiteContent(nil), s.content...)
}

func (s *State) PutContent(c domain.SiteContent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putContentLocked(c)
}

func (s *State) putContentLocked(c domain.SiteContent) {
	for i := range s.content {
		if s.content[i].Section == c.Section && s.content[i].Key == c.Key {
			s.content[i] = c
			return
		}
	}
	s.content = append(s.content, c)
}

// Persist writes the local snapshot of one entity. Errors are logged only.
func (s *State) Persist(ctx context.Context, entity domain.Entity) {
	if s.snapshots == nil {
		return
	}
	var v any
	switch entity {
	case domain.EntityMenuItem:
		v = s.Menu()
	case domain.EntityOrder:
		v = s.Orders()
	case domain.EntityDriver:
		v = s.Drivers()
	case domain.EntityReservation:
		v = s.Reservations()
	case domain.EntitySettings:
		v = s.Settings()
	case domain.EntitySiteContent:
		v = s.Content()
	default:
		return
	}
	if err := s.snapshots.SaveSnapshot(ctx, entity, v); err != nil {
		log.WithError(err).WithField("entity", entity).Warn("failed to save local snapshot")
	}
}

type RefreshReport struct {
	// Sources tells, per entity, whether data came from the "store", a local
	// "snapshot", or the built-in "seed".
	Sources     map[domain.Entity]string `json:"sources"`
	LocalOrders int                      `json:"local_orders"`
}

// Refresh re-reads every entity from the record store. When the store fails
// the last local snapshot is used instead, and when there is neither the
// current content stays. Orders created while the store was unreachable are
// kept.
func (s *State) Refresh(ctx context.Context, repos Repositories) RefreshReport {
	report := RefreshReport{Sources: make(map[domain.Entity]string)}

	var menu []domain.MenuItem
	report.Sources[domain.EntityMenuItem] = s.load(ctx, domain.EntityMenuItem, &menu, func() error {
		if repos.Menu == nil {
			return errNoRepository
		}
		var err error
		menu, err = repos.Menu.ListMenuItems(ctx)
		return err
	})
	if len(menu) > 0 {
		s.mu.Lock()
		s.menu = menu
		s.mu.Unlock()
	} else {
		report.Sources[domain.EntityMenuItem] = sourceSeed
	}

	var orders []domain.Order
	report.Sources[domain.EntityOrder] = s.load(ctx, domain.EntityOrder, &orders, func() error {
		if repos.Orders == nil {
			return errNoRepository
		}
		var err error
		orders, err = repos.Orders.ListOrders(ctx)
		return err
	})
	if report.Sources[domain.EntityOrder] != sourceSeed {
		report.LocalOrders = s.reconcileOrders(orders)
	}

	var drivers []domain.Driver
	report.Sources[domain.EntityDriver] = s.load(ctx, domain.EntityDriver, &drivers, func() error {
		if repos.Drivers == nil {
			return errNoRepository
		}
		var err error
		drivers, err = repos.Drivers.ListDrivers(ctx)
		return err
	})
	if len(drivers) > 0 {
		s.mu.Lock()
		s.drivers = drivers
		s.mu.Unlock()
	} else {
		report.Sources[domain.EntityDriver] = sourceSeed
	}

	var reservations []domain.Reservation
	report.Sources[domain.EntityReservation] = s.load(ctx, domain.EntityReservation, &reservations, func() error {
		if repos.Reservations == nil {
			return errNoRepository
		}
		var err error
		reservations, err = repos.Reservations.ListReservations(ctx)
		return err
	})
	if report.Sources[domain.EntityReservation] != sourceSeed {
		s.mu.Lock()
		s.reservations = make(map[string]domain.Reservation, len(reservations))
		for _, r := range reservations {
			s.reservations[r.ID] = r
		}
		s.mu.Unlock()
	}

	report.Sources[domain.EntitySettings] = s.loadSettings(ctx, repos.Settings)

	var content []domain.SiteContent
	report.Sources[domain.EntitySiteContent] = s.load(ctx, domain.EntitySiteContent, &content, func() error {
		if repos.Content == nil {
			return errNoRepository
		}
		var err error
		content, err = repos.Content.ListContent(ctx)
		return err
	})
	if report.Sources[domain.EntitySiteContent] != sourceSeed {
		s.mu.Lock()
		s.content = content
		s.mu.Unlock()
	}

	for entity, source := range report.Sources {
		if source == sourceStore {
			s.Persist(ctx, entity)
		}
	}
	return report
}

const (
	sourceStore    = "store"
	sourceSnapshot = "snapshot"
	sourceSeed     = "seed"
)

var errNoRepository = errors.New("record store not configured")

func (s *State) load(ctx context.Context, entity domain.Entity, dst any, fetch func() error) string {
	err := fetch()
	if err == nil {
		return sourceStore
	}
	logger := log.WithField("entity", entity)
	if !errors.Is(err, errNoRepository) {
		logger.WithError(err).Warn("record store unavailable, trying local snapshot")
	}
	if s.snapshots == nil {
		return sourceSeed
	}
	ok, serr := s.snapshots.LoadSnapshot(ctx, entity, dst)
	if serr != nil {
		logger.WithError(serr).Warn("failed to read local snapshot")
		return sourceSeed
	}
	if !ok {
		return sourceSeed
	}
	return sourceSnapshot
}

func (s *State) loadSettings(ctx context.Context, repo SettingsRepository) string {
	var groups map[string]json.RawMessage
	var err error
	if repo == nil {
		err = errNoRepository
	} else {
		groups, err = repo.LoadSettings(ctx)
	}
	if err == nil {
		settings := domain.DefaultSettings()
		for name, raw := range groups {
			if aerr := settings.ApplyGroup(name, raw); aerr != nil {
				log.WithError(aerr).WithField("group", name).Warn("skipping settings group")
			}
		}
		s.SetSettings(settings)
		return sourceStore
	}
	if !errors.Is(err, errNoRepository) {
		log.WithError(err).Warn("record store unavailable, trying local settings snapshot")
	}
	if s.snapshots == nil {
		return sourceSeed
	}
	var settings domain.RestaurantSettings
	ok, serr := s.snapshots.LoadSnapshot(ctx, domain.EntitySettings, &settings)
	if serr != nil || !ok {
		return sourceSeed
	}
	s.SetSettings(settings)
	return sourceSnapshot
}

// reconcileOrders replaces the cache with the stored orders and keeps the
// ones that only exist locally. It returns how many local orders remain.
func (s *State) reconcileOrders(stored []domain.Order) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string]domain.Order, len(stored))
	for _, o := range stored {
		next[o.ID] = o
	}
	local := 0
	for id, o := range s.orders {
		if _, ok := next[id]; ok {
			continue
		}
		if domain.IsLocalOrderID(id) {
			next[id] = o
			local++
		}
	}
	s.orders = next
	return local
}

// ApplyEvent upserts a change received from the change stream. Events this
// process published itself are ignored.
func (s *State) ApplyEvent(ev domain.ChangeEvent) {
	if ev.Source != "" && ev.Source == s.source {
		return
	}
	logger := log.WithFields(log.Fields{"entity": ev.Entity, "op": ev.Op, "id": ev.ID})
	if err := s.applyEvent(ev); err != nil {
		logger.WithError(err).Warn("failed to apply change event")
		return
	}
	logger.Debug("change event applied")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Persist(ctx, ev.Entity)
}

func (s *State) applyEvent(ev domain.ChangeEvent) error {
	deleted := ev.Op == domain.OpDelete
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.Entity {
	case domain.EntityOrder:
		if deleted {
			delete(s.orders, ev.ID)
			return nil
		}
		var o domain.Order
		if err := json.Unmarshal(ev.Record, &o); err != nil {
			return err
		}
		s.orders[o.ID] = o
	case domain.EntityMenuItem:
		if deleted {
			for i := range s.menu {
				if s.menu[i].ID == ev.ID {
					s.menu = append(s.menu[:i], s.menu[i+1:]...)
					break
				}
			}
			return nil
		}
		var m domain.MenuItem
		if err := json.Unmarshal(ev.Record, &m); err != nil {
			return err
		}
		s.putMenuItemLocked(m)
	case domain.EntityDriver:
		if deleted {
			if i := s.driverIndexLocked(ev.ID); i >= 0 {
				s.drivers = append(s.drivers[:i], s.drivers[i+1:]...)
			}
			return nil
		}
		var d domain.Driver
		if err := json.Unmarshal(ev.Record, &d); err != nil {
			return err
		}
		s.putDriverLocked(d)
	case domain.EntityReservation:
		if deleted {
			delete(s.reservations, ev.ID)
			return nil
		}
		var r domain.Reservation
		if err := json.Unmarshal(ev.Record, &r); err != nil {
			return err
		}
		s.reservations[r.ID] = r
	case domain.EntitySettings:
		return s.settings.ApplyGroup(ev.ID, ev.Record)
	case domain.EntitySiteContent:
		var c domain.SiteContent
		if err := json.Unmarshal(ev.Record, &c); err != nil {
			return err
		}
		s.putContentLocked(c)
	default:
		return fmt.Errorf("unknown entity %q", ev.Entity)
	}
	return nil
}

// contentKey is the change stream id of a site content entry.
func contentKey(c domain.SiteContent) string {
	return strings.Join([]string{c.Section, c.Key}, "/")
}
