package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hourdesk/appointments-api/internal/clock"
	"github.com/hourdesk/appointments-api/internal/jobs"
	"github.com/hourdesk/appointments-api/internal/notifications"
	"github.com/hourdesk/appointments-api/internal/observability/metrics"
	"github.com/hourdesk/appointments-api/internal/users"
	"github.com/hourdesk/appointments-api/pkg/logging"
)

var schedulingTracer = otel.Tracer("hourdesk.internal.scheduling")

const notificationDateLayout = "Monday, January 2 at 15:04"

// Dispatcher hands jobs to the queue transport. The call returns once the
// transport accepts the message; failures wrap jobs.ErrDispatch.
type Dispatcher interface {
	EnqueueCancellationMail(ctx context.Context, snapshot jobs.AppointmentSnapshot) error
}

// ResultCache memoizes read-heavy query results. cache.Cache implements it.
type ResultCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// ServiceConfig wires the scheduling service dependencies.
type ServiceConfig struct {
	Repo          Repository
	Users         users.Repository
	Notifications notifications.Repository
	Dispatcher    Dispatcher
	Cache         ResultCache // optional; nil disables memoization
	Clock         clock.Clock
	Metrics       *metrics.SchedulingMetrics
	Logger        *logging.Logger

	// AvailabilityTTL bounds how long a cached availability grid may serve.
	// Kept short because slots decay with wall-clock time even without writes.
	AvailabilityTTL time.Duration
}

// Service implements the scheduling core: booking with conflict/temporal
// guards, cancellation with ownership/window guards, listing, and the
// availability grid.
type Service struct {
	repo            Repository
	users           users.Repository
	notifications   notifications.Repository
	dispatcher      Dispatcher
	cache           ResultCache
	clock           clock.Clock
	availability    *AvailabilityCalculator
	metrics         *metrics.SchedulingMetrics
	logger          *logging.Logger
	availabilityTTL time.Duration
}

// NewService constructs the scheduling service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Repo == nil {
		panic("scheduling: repository required")
	}
	if cfg.Users == nil {
		panic("scheduling: users repository required")
	}
	if cfg.Notifications == nil {
		panic("scheduling: notifications repository required")
	}
	if cfg.Dispatcher == nil {
		panic("scheduling: dispatcher required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.AvailabilityTTL <= 0 {
		cfg.AvailabilityTTL = time.Minute
	}
	return &Service{
		repo:            cfg.Repo,
		users:           cfg.Users,
		notifications:   cfg.Notifications,
		dispatcher:      cfg.Dispatcher,
		cache:           cfg.Cache,
		clock:           cfg.Clock,
		availability:    NewAvailabilityCalculator(cfg.Repo, cfg.Clock),
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		availabilityTTL: cfg.AvailabilityTTL,
	}
}

// Book creates an appointment for userID with providerID at rawDate's hour.
// The pre-insert slot check is an early exit; the store's uniqueness guard is
// what actually prevents concurrent double-booking, surfacing as ErrSlotTaken.
func (s *Service) Book(ctx context.Context, userID, providerID uuid.UUID, rawDate time.Time) (*Appointment, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("hourdesk.user_id", userID.String()),
		attribute.String("hourdesk.provider_id", providerID.String()),
	)

	provider, err := s.users.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			s.metrics.ObserveBooking("invalid_provider")
			return nil, ErrInvalidProvider
		}
		span.RecordError(err)
		return nil, fmt.Errorf("scheduling: resolve provider: %w", err)
	}
	if !provider.Provider {
		s.metrics.ObserveBooking("invalid_provider")
		return nil, ErrInvalidProvider
	}

	date := clock.StartOfHour(rawDate)
	now := s.clock.Now()
	if !date.After(now) {
		s.metrics.ObserveBooking("past_date")
		return nil, ErrPastDate
	}

	existing, err := s.repo.FindActiveByProviderAndDate(ctx, providerID, date)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if existing != nil {
		s.metrics.ObserveBooking("conflict")
		return nil, ErrSlotTaken
	}

	appointment := &Appointment{
		UserID:     userID,
		ProviderID: providerID,
		Date:       date,
	}
	if err := s.repo.Insert(ctx, appointment); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			// Lost the race between check and insert; the store's uniqueness
			// guard caught it.
			s.metrics.ObserveBooking("conflict")
			return nil, ErrSlotTaken
		}
		span.RecordError(err)
		return nil, err
	}

	s.notifyProviderOfBooking(ctx, appointment, provider)
	s.invalidateAfterWrite(ctx, appointment)

	s.metrics.ObserveBooking("created")
	s.logger.Info("appointment booked",
		"appointment_id", appointment.ID,
		"user_id", userID,
		"provider_id", providerID,
		"date", appointment.Date,
	)
	return appointment, nil
}

// Cancel marks the appointment canceled on behalf of requesterID and enqueues
// the cancellation mail job. The enqueue is best-effort: by the time it runs
// the cancellation is committed and is never rolled back.
func (s *Service) Cancel(ctx context.Context, requesterID, appointmentID uuid.UUID) (*Appointment, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("hourdesk.appointment_id", appointmentID.String()))

	appointment, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			s.metrics.ObserveCancellation("not_found")
			return nil, ErrAppointmentNotFound
		}
		span.RecordError(err)
		return nil, err
	}

	if appointment.UserID != requesterID {
		s.metrics.ObserveCancellation("not_owner")
		return nil, ErrNotOwner
	}

	now := s.clock.Now()
	deadline := clock.SubHours(appointment.Date, int(CancellationWindow/time.Hour))
	if !now.Before(deadline) {
		s.metrics.ObserveCancellation("window_closed")
		return nil, ErrCancelWindowClosed
	}

	canceledAt := now
	appointment.CanceledAt = &canceledAt
	if err := s.repo.Save(ctx, appointment); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.enqueueCancellationMail(ctx, appointment)
	s.invalidateAfterWrite(ctx, appointment)

	s.metrics.ObserveCancellation("canceled")
	s.logger.Info("appointment canceled",
		"appointment_id", appointment.ID,
		"user_id", requesterID,
		"provider_id", appointment.ProviderID,
	)
	return appointment, nil
}

// List returns one page of the user's active appointments with the provider
// embedded, memoized until a write invalidates it.
func (s *Service) List(ctx context.Context, userID uuid.UUID, page int) ([]*AppointmentView, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.list")
	defer span.End()

	if page < 1 {
		page = 1
	}

	key := userAppointmentsKey(userID, page)
	if s.cache != nil {
		var cached []*AppointmentView
		if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
			s.logger.Warn("listing cache read failed", "error", err, "key", key)
		} else if hit {
			return cached, nil
		}
	}

	appointments, err := s.repo.ListActiveByUser(ctx, userID, PageSize, (page-1)*PageSize)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	now := s.clock.Now()
	providerCache := make(map[uuid.UUID]*users.User)
	views := make([]*AppointmentView, 0, len(appointments))
	for _, a := range appointments {
		view := &AppointmentView{
			ID:         a.ID,
			Date:       a.Date,
			Past:       a.Past(now),
			Cancelable: a.Cancelable(now),
		}
		provider, ok := providerCache[a.ProviderID]
		if !ok {
			provider, err = s.users.GetByID(ctx, a.ProviderID)
			if err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("scheduling: resolve provider %s: %w", a.ProviderID, err)
			}
			providerCache[a.ProviderID] = provider
		}
		view.Provider = &ProviderView{
			ID:     provider.ID,
			Name:   provider.Name,
			Avatar: provider.Avatar,
		}
		views = append(views, view)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, views, 0); err != nil {
			s.logger.Warn("listing cache write failed", "error", err, "key", key)
		}
	}
	return views, nil
}

// Availability returns the provider's slot grid for day, memoized briefly.
func (s *Service) Availability(ctx context.Context, providerID uuid.UUID, day time.Time) ([]Slot, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.availability")
	defer span.End()
	span.SetAttributes(attribute.String("hourdesk.provider_id", providerID.String()))

	key := providerAvailabilityKey(providerID, day)
	if s.cache != nil {
		var cached []Slot
		if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
			s.logger.Warn("availability cache read failed", "error", err, "key", key)
		} else if hit {
			return cached, nil
		}
	}

	start := time.Now()
	slots, err := s.availability.DayAvailability(ctx, providerID, day)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveAvailabilityLatency(time.Since(start).Seconds())

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, slots, s.availabilityTTL); err != nil {
			s.logger.Warn("availability cache write failed", "error", err, "key", key)
		}
	}
	return slots, nil
}

// Providers lists bookable users, memoized with the default TTL.
func (s *Service) Providers(ctx context.Context) ([]*users.User, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.providers")
	defer span.End()

	if s.cache != nil {
		var cached []*users.User
		if hit, err := s.cache.Get(ctx, providersKey, &cached); err != nil {
			s.logger.Warn("providers cache read failed", "error", err)
		} else if hit {
			return cached, nil
		}
	}

	providers, err := s.users.ListProviders(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, providersKey, providers, 0); err != nil {
			s.logger.Warn("providers cache write failed", "error", err)
		}
	}
	return providers, nil
}

func (s *Service) notifyProviderOfBooking(ctx context.Context, a *Appointment, provider *users.User) {
	booker, err := s.users.GetByID(ctx, a.UserID)
	if err != nil {
		s.logger.Error("skipping booking notification, booker lookup failed",
			"error", err, "appointment_id", a.ID, "user_id", a.UserID)
		return
	}

	notification := &notifications.Notification{
		RecipientID: provider.ID,
		Content:     fmt.Sprintf("New booking from %s on %s", booker.Name, a.Date.Format(notificationDateLayout)),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		// The appointment is already committed; a lost notification is not a
		// booking failure.
		s.logger.Error("booking notification write failed",
			"error", err, "appointment_id", a.ID, "recipient_id", provider.ID)
	}
}

func (s *Service) enqueueCancellationMail(ctx context.Context, a *Appointment) {
	provider, err := s.users.GetByID(ctx, a.ProviderID)
	if err != nil {
		s.metrics.ObserveJobEnqueued(jobs.KeyCancellationMail, "error")
		s.logger.Error("skipping cancellation mail, provider lookup failed",
			"error", err, "appointment_id", a.ID)
		return
	}
	booker, err := s.users.GetByID(ctx, a.UserID)
	if err != nil {
		s.metrics.ObserveJobEnqueued(jobs.KeyCancellationMail, "error")
		s.logger.Error("skipping cancellation mail, user lookup failed",
			"error", err, "appointment_id", a.ID)
		return
	}

	snapshot := jobs.AppointmentSnapshot{
		ID:       a.ID,
		Date:     a.Date,
		Provider: jobs.Contact{Name: provider.Name, Email: provider.Email},
		User:     jobs.Contact{Name: booker.Name},
	}
	if err := s.dispatcher.EnqueueCancellationMail(ctx, snapshot); err != nil {
		s.metrics.ObserveJobEnqueued(jobs.KeyCancellationMail, "error")
		s.logger.Error("cancellation mail enqueue failed", "error", err, "appointment_id", a.ID)
		return
	}
	s.metrics.ObserveJobEnqueued(jobs.KeyCancellationMail, "ok")
}

func (s *Service) invalidateAfterWrite(ctx context.Context, a *Appointment) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, userAppointmentsPrefix(a.UserID)); err != nil {
		s.logger.Warn("listing cache invalidation failed", "error", err, "user_id", a.UserID)
	}
	if err := s.cache.Invalidate(ctx, providerAvailabilityKey(a.ProviderID, a.Date)); err != nil {
		s.logger.Warn("availability cache invalidation failed", "error", err, "provider_id", a.ProviderID)
	}
}

const providersKey = "providers"

func userAppointmentsPrefix(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:appointments", userID)
}

func userAppointmentsKey(userID uuid.UUID, page int) string {
	return fmt.Sprintf("%s:%d", userAppointmentsPrefix(userID), page)
}

func providerAvailabilityKey(providerID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("provider:%s:availability:%s", providerID, day.Format("2006-01-02"))
}
