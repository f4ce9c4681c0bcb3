package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
)

type DriverService struct {
	repo    DriverRepository
	state   *State
	changes changes
}

func NewDriverService(state *State, repo DriverRepository, publisher ChangePublisher) *DriverService {
	return &DriverService{repo: repo, state: state, changes: changes{publisher: publisher, source: state.Source()}}
}

func (s *DriverService) List() []domain.Driver {
	return s.state.Drivers()
}

// Available lists drivers that can take another delivery.
func (s *DriverService) Available() []domain.Driver {
	var out []domain.Driver
	for _, d := range s.state.Drivers() {
		if d.Status == domain.DriverAvailable {
			out = append(out, d)
		}
	}
	return out
}

func (s *DriverService) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return domain.Driver{}, fmt.Errorf("driver name: %w", ErrInvalidInput)
	}
	if d.Status == "" {
		d.Status = domain.DriverAvailable
	}
	if !d.Status.Valid() {
		return domain.Driver{}, fmt.Errorf("driver status %q: %w", d.Status, ErrInvalidStatus)
	}
	if d.ID == "" {
		d.ID = "DRV-" + strings.ToUpper(uuid.NewString()[:8])
	}
	d.ActiveDeliveries = 0
	s.state.PutDriver(d)
	s.store(ctx, d, domain.OpInsert)
	return d, nil
}

func (s *DriverService) SetStatus(ctx context.Context, id string, status domain.DriverStatus) (domain.Driver, error) {
	if !status.Valid() {
		return domain.Driver{}, fmt.Errorf("driver status %q: %w", status, ErrInvalidStatus)
	}
	d, ok := s.state.Driver(id)
	if !ok {
		return domain.Driver{}, fmt.Errorf("driver %s: %w", id, ErrNotFound)
	}
	d.Status = status
	s.state.PutDriver(d)
	s.store(ctx, d, domain.OpUpdate)
	return d, nil
}

func (s *DriverService) Delete(ctx context.Context, id string) error {
	if !s.state.RemoveDriver(id) {
		return fmt.Errorf("driver %s: %w", id, ErrNotFound)
	}
	if s.repo != nil {
		if _, err := s.repo.DeleteDriver(ctx, id); err != nil {
			log.WithError(err).WithField("driver", id).Error("failed to delete driver")
		}
	}
	s.state.Persist(ctx, domain.EntityDriver)
	s.changes.emit(ctx, domain.EntityDriver, domain.OpDelete, id, nil)
	return nil
}

func (s *DriverService) store(ctx context.Context, d domain.Driver, op domain.ChangeOp) {
	if s.repo != nil {
		if err := s.repo.UpsertDriver(ctx, &d); err != nil {
			log.WithError(err).WithField("driver", d.ID).Error("failed to store driver")
		}
	}
	s.state.Persist(ctx, domain.EntityDriver)
	s.changes.emit(ctx, domain.EntityDriver, op, d.ID, d)
}

var _ DriverServiceInterface = (*DriverService)(nil)
