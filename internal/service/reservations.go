package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
	"greek-irini/internal/notify"
)

const MaxGuests = 20

type ReservationService struct {
	repo    ReservationRepository
	mailer  Mailer
	state   *State
	changes changes
	now     func() time.Time
}

func NewReservationService(state *State, repo ReservationRepository, mailer Mailer, publisher ChangePublisher) *ReservationService {
	return &ReservationService{
		repo:    repo,
		mailer:  mailer,
		state:   state,
		changes: changes{publisher: publisher, source: state.Source()},
		now:     time.Now,
	}
}

func validateReservation(r domain.Reservation) error {
	errs := FieldErrors{}
	if len([]rune(strings.TrimSpace(r.CustomerName))) < 2 {
		errs["customer_name"] = ErrRequiredField
	}
	if !emailPattern.MatchString(strings.TrimSpace(r.CustomerEmail)) {
		errs["customer_email"] = ErrInvalidEmail
	}
	phone := phoneNoise.Replace(strings.TrimSpace(r.CustomerPhone))
	if !dutchPhone.MatchString(phone) && !internationalTel.MatchString(phone) {
		errs["customer_phone"] = ErrInvalidPhone
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		errs["date"] = ErrRequiredField
	}
	if _, err := time.Parse("15:04", r.Time); err != nil {
		errs["time"] = ErrRequiredField
	}
	if r.NumberOfGuests < 1 || r.NumberOfGuests > MaxGuests {
		errs["number_of_guests"] = ErrRequiredField
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// Create books a table request. It starts pending until staff confirm it.
func (s *ReservationService) Create(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	if err := validateReservation(r); err != nil {
		return domain.Reservation{}, err
	}
	now := s.now()
	r.Status = domain.ReservationPending
	r.AdminNotes = ""
	r.ConfirmationSentAt = nil
	r.CreatedAt, r.UpdatedAt = now, now

	var err error
	if s.repo == nil {
		err = errNoRepository
	} else {
		err = s.repo.CreateReservation(ctx, &r)
	}
	if err != nil || r.ID == "" {
		r.ID = "RES-" + strings.ToUpper(uuid.NewString()[:8])
		log.WithError(err).WithField("reservation", r.ID).Warn("record store unavailable, keeping reservation locally")
	}
	s.state.PutReservation(r)
	s.state.Persist(ctx, domain.EntityReservation)
	s.changes.emit(ctx, domain.EntityReservation, domain.OpInsert, r.ID, r)
	return r, nil
}

func (s *ReservationService) List(status domain.ReservationStatus) []domain.Reservation {
	all := s.state.Reservations()
	if status == "" {
		return all
	}
	out := make([]domain.Reservation, 0, len(all))
	for _, r := range all {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

func (s *ReservationService) SetStatus(ctx context.Context, id string, status domain.ReservationStatus) (domain.Reservation, error) {
	if !status.Valid() {
		return domain.Reservation{}, fmt.Errorf("reservation status %q: %w", status, ErrInvalidStatus)
	}
	return s.update(ctx, id, func(r *domain.Reservation) error {
		r.Status = status
		return nil
	})
}

func (s *ReservationService) SetNotes(ctx context.Context, id, notes string) (domain.Reservation, error) {
	return s.update(ctx, id, func(r *domain.Reservation) error {
		r.AdminNotes = notes
		return nil
	})
}

// Confirm marks the reservation confirmed and mails the guest.
func (s *ReservationService) Confirm(ctx context.Context, id, notes string, lang domain.Language) (domain.Reservation, notify.Result, error) {
	r, err := s.update(ctx, id, func(r *domain.Reservation) error {
		r.Status = domain.ReservationConfirmed
		if notes != "" {
			r.AdminNotes = notes
		}
		return nil
	})
	if err != nil {
		return domain.Reservation{}, notify.Result{}, err
	}
	res := notify.Result{Success: true}
	if s.mailer != nil {
		res = s.mailer.SendReservationConfirmation(ctx, r, notes, lang)
	}
	if res.Success {
		sentAt := s.now()
		r, _ = s.update(ctx, id, func(r *domain.Reservation) error {
			r.ConfirmationSentAt = &sentAt
			return nil
		})
	}
	return r, res, nil
}

// Reject declines the reservation, optionally proposing another time.
func (s *ReservationService) Reject(ctx context.Context, id, alternative string, lang domain.Language) (domain.Reservation, notify.Result, error) {
	r, err := s.update(ctx, id, func(r *domain.Reservation) error {
		r.Status = domain.ReservationRejected
		return nil
	})
	if err != nil {
		return domain.Reservation{}, notify.Result{}, err
	}
	res := notify.Result{Success: true}
	if s.mailer != nil {
		res = s.mailer.SendReservationRejection(ctx, r, alternative, lang)
	}
	return r, res, nil
}

func (s *ReservationService) update(ctx context.Context, id string, fn func(r *domain.Reservation) error) (domain.Reservation, error) {
	r, err := s.state.UpdateReservation(id, fn)
	if err != nil {
		return domain.Reservation{}, err
	}
	if s.repo != nil && !strings.HasPrefix(r.ID, "RES-") {
		if err := s.repo.UpdateReservation(ctx, &r); err != nil {
			log.WithError(err).WithField("reservation", id).Error("failed to store reservation")
		}
	}
	s.state.Persist(ctx, domain.EntityReservation)
	s.changes.emit(ctx, domain.EntityReservation, domain.OpUpdate, r.ID, r)
	return r, nil
}

var _ ReservationServiceInterface = (*ReservationService)(nil)
