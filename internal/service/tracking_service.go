package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/observability"
	"github.com/noah-isme/hikelink-api/internal/repository"
	"github.com/noah-isme/hikelink-api/internal/tracker"
)

const routeImageTimeout = 30 * time.Second

// ErrNotTracking is returned when a sample or stop arrives without an active hike.
var ErrNotTracking = tracker.ErrNotTracking

// ErrAlreadyTracking is returned when a hike is started twice.
var ErrAlreadyTracking = tracker.ErrAlreadyTracking

// RouteMapper renders a route of {lat, lng} pairs as an image URL.
type RouteMapper interface {
	URL(route [][]float64) (string, error)
}

// RouteImageStore copies a remote image into permanent storage.
type RouteImageStore interface {
	UploadRemote(ctx context.Context, name, sourceURL string) (string, error)
}

// TrackingService hosts one live hike per user.
type TrackingService interface {
	Start(ctx context.Context, session Session) (tracker.Snapshot, error)
	Sample(ctx context.Context, session Session, req dto.TrackingSampleRequest) (tracker.Snapshot, error)
	Snapshot(ctx context.Context, session Session) (tracker.Snapshot, error)
	Stop(ctx context.Context, session Session, req dto.TrackingStopRequest) (dto.ActivityResponse, error)
	Close()
}

type liveHike struct {
	tracker *tracker.Tracker
	cancel  context.CancelFunc
}

type trackingService struct {
	activities repository.ActivityRepository
	badges     ActivityService
	mapper     RouteMapper
	images     RouteImageStore
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	interval   time.Duration
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time

	mu    sync.Mutex
	hikes map[string]*liveHike
	jobs  sync.WaitGroup
}

// NewTrackingService constructs the tracking service. The mapper and image store may be nil,
// in which case saved hikes get no route image.
func NewTrackingService(
	activities repository.ActivityRepository,
	badgeEvaluator ActivityService,
	mapper RouteMapper,
	images RouteImageStore,
	validate *validator.Validate,
	interval time.Duration,
	logger zerolog.Logger,
) TrackingService {
	if interval <= 0 {
		interval = time.Second
	}
	return &trackingService{
		activities: activities,
		badges:     badgeEvaluator,
		mapper:     mapper,
		images:     images,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		interval:   interval,
		logger:     logger.With().Str("component", "tracking_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/hikelink-api/internal/service/tracking"),
		now:        time.Now,
		hikes:      make(map[string]*liveHike),
	}
}

func (s *trackingService) Start(ctx context.Context, session Session) (tracker.Snapshot, error) {
	if err := requireSession(session); err != nil {
		return tracker.Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hikes[session.UserID]; ok {
		return tracker.Snapshot{}, ErrAlreadyTracking
	}

	t := tracker.New()
	if err := t.Start(); err != nil {
		return tracker.Snapshot{}, err
	}

	tickCtx, cancel := context.WithCancel(context.Background())
	s.hikes[session.UserID] = &liveHike{tracker: t, cancel: cancel}
	go s.tick(tickCtx, t)

	observability.TrackerSessions().Inc()
	s.logger.Debug().Str("user_id", session.UserID).Msg("hike started")
	return t.Snapshot(), nil
}

func (s *trackingService) tick(ctx context.Context, t *tracker.Tracker) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}

func (s *trackingService) Sample(ctx context.Context, session Session, req dto.TrackingSampleRequest) (tracker.Snapshot, error) {
	if err := requireSession(session); err != nil {
		return tracker.Snapshot{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return tracker.Snapshot{}, err
	}

	hike, ok := s.hike(session.UserID)
	if !ok {
		return tracker.Snapshot{}, ErrNotTracking
	}

	sample := tracker.Sample{
		Point: tracker.Point{Latitude: req.Latitude, Longitude: req.Longitude},
		Speed: req.Speed,
	}
	if req.Timestamp != nil {
		sample.Timestamp = req.Timestamp.UTC()
	} else {
		sample.Timestamp = s.now().UTC()
	}

	if _, err := hike.tracker.Observe(sample); err != nil {
		return tracker.Snapshot{}, err
	}
	observability.TrackerSamples().Inc()
	return hike.tracker.Snapshot(), nil
}

func (s *trackingService) Snapshot(ctx context.Context, session Session) (tracker.Snapshot, error) {
	if err := requireSession(session); err != nil {
		return tracker.Snapshot{}, err
	}
	hike, ok := s.hike(session.UserID)
	if !ok {
		return tracker.Snapshot{Elapsed: tracker.FormatElapsed(0), Distance: tracker.FormatDistance(0)}, nil
	}
	return hike.tracker.Snapshot(), nil
}

// Stop ends the hike and saves it. The route image is attached afterwards; failing to
// produce it leaves the saved activity without an image.
func (s *trackingService) Stop(ctx context.Context, session Session, req dto.TrackingStopRequest) (dto.ActivityResponse, error) {
	if err := requireSession(session); err != nil {
		return dto.ActivityResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ActivityResponse{}, err
	}
	trailName := strings.TrimSpace(s.sanitizer.Sanitize(req.TrailName))
	if trailName == "" {
		return dto.ActivityResponse{}, fmt.Errorf("%w: trail name", ErrInvalidInput)
	}

	s.mu.Lock()
	hike, ok := s.hikes[session.UserID]
	if ok {
		delete(s.hikes, session.UserID)
	}
	s.mu.Unlock()
	if !ok {
		return dto.ActivityResponse{}, ErrNotTracking
	}

	hike.cancel()
	observability.TrackerSessions().Dec()

	summary, err := hike.tracker.Stop()
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "tracking.stop", trace.WithAttributes(
		attribute.String("tracking.user_id", session.UserID),
		attribute.Int("tracking.points", len(summary.Route)),
	))
	defer span.End()

	activity := models.Activity{
		UserID:     session.UserID,
		TrailName:  trailName,
		DistanceKm: summary.DistanceKm,
		Distance:   summary.Distance,
		Elapsed:    summary.Elapsed,
		Seconds:    summary.Seconds,
		Date:       s.now().Format("2006-01-02"),
	}
	if err := s.activities.Create(ctx, &activity); err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Str("user_id", session.UserID).Msg("failed to save activity")
		return dto.ActivityResponse{}, fmt.Errorf("save activity: %w", err)
	}

	if s.badges != nil {
		if _, err := s.badges.EvaluateBadges(ctx, session.UserID); err != nil {
			s.logger.Warn().Err(err).Str("user_id", session.UserID).Msg("failed to evaluate badges")
		}
	}

	s.attachRouteImage(activity, summary.Route)
	return dto.NewActivityResponse(activity), nil
}

func (s *trackingService) attachRouteImage(activity models.Activity, route []tracker.Point) {
	// A single fix draws no line, so there is nothing to map.
	if s.mapper == nil || s.images == nil || len(route) < 2 {
		observability.RouteImages().WithLabelValues("skipped").Inc()
		return
	}

	coords := make([][]float64, 0, len(route))
	for _, point := range route {
		coords = append(coords, []float64{point.Latitude, point.Longitude})
	}

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()

		ctx, cancel := context.WithTimeout(context.Background(), routeImageTimeout)
		defer cancel()

		if err := s.enrich(ctx, activity, coords); err != nil {
			observability.RouteImages().WithLabelValues("failed").Inc()
			s.logger.Warn().Err(err).Str("activity_id", activity.ID).Msg("route image unavailable")
			return
		}
		observability.RouteImages().WithLabelValues("ok").Inc()
	}()
}

func (s *trackingService) enrich(ctx context.Context, activity models.Activity, coords [][]float64) error {
	mapURL, err := s.mapper.URL(coords)
	if err != nil {
		return fmt.Errorf("build map url: %w", err)
	}
	imageURL, err := s.images.UploadRemote(ctx, "route-"+activity.ID, mapURL)
	if err != nil {
		return fmt.Errorf("upload route image: %w", err)
	}
	if imageURL == "" {
		return errors.New("upload returned no url")
	}
	return s.activities.SetImage(ctx, activity.ID, imageURL)
}

// Close stops every live hike without saving it and waits for pending route images.
func (s *trackingService) Close() {
	s.mu.Lock()
	for userID, hike := range s.hikes {
		hike.cancel()
		observability.TrackerSessions().Dec()
		delete(s.hikes, userID)
	}
	s.mu.Unlock()

	s.jobs.Wait()
}

func (s *trackingService) hike(userID string) (*liveHike, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hike, ok := s.hikes[userID]
	return hike, ok
}
