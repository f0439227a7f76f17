package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/models"
	"github.com/noah-isme/hikelink-api/internal/repository"
)

type liveUpdateFixture struct {
	participationFixture
	svc      LiveUpdateService
	outsider models.User
}

func newLiveUpdateFixture(t *testing.T) liveUpdateFixture {
	t.Helper()
	base := newParticipationFixture(t)
	ctx := context.Background()

	_, err := base.svc.RequestJoin(ctx, sessionFor(base.hiker), base.event.ID)
	require.NoError(t, err)
	_, err = base.svc.Accept(ctx, sessionFor(base.owner), base.event.ID, base.hiker.ID)
	require.NoError(t, err)

	svc := NewLiveUpdateService(
		repository.NewLiveUpdateRepository(base.db),
		repository.NewPostRepository(base.db),
		repository.NewParticipationRepository(base.db),
		repository.NewUserRepository(base.db),
		validator.New(),
		testLogger(),
	)
	return liveUpdateFixture{participationFixture: base, svc: svc, outsider: createUser(t, base.db, "Outsider")}
}

func TestLiveUpdatePostRequiresRosterSeat(t *testing.T) {
	f := newLiveUpdateFixture(t)
	ctx := context.Background()

	update, err := f.svc.Post(ctx, sessionFor(f.hiker), f.event.ID, dto.LiveUpdateRequest{
		Message:  "Fog above <script>x</script>the treeline",
		ImageURL: "https://cdn.example.com/fog.png",
	})
	require.NoError(t, err)
	require.Equal(t, "Fog above the treeline", update.Message)
	require.Equal(t, models.LiveUpdateInfo, update.Type)
	require.Equal(t, "Hiker", update.AuthorName)
	require.Equal(t, "https://cdn.example.com/fog.png", update.ImageURL)

	_, err = f.svc.Post(ctx, sessionFor(f.owner), f.event.ID, dto.LiveUpdateRequest{Message: "Trail closed at the hut", Type: models.LiveUpdateWarning})
	require.NoError(t, err)

	_, err = f.svc.Post(ctx, sessionFor(f.outsider), f.event.ID, dto.LiveUpdateRequest{Message: "hi"})
	require.ErrorIs(t, err, ErrNotEventMember)

	_, err = f.svc.Post(ctx, sessionFor(f.hiker), f.event.ID, dto.LiveUpdateRequest{Message: "<b></b>"})
	require.ErrorIs(t, err, ErrEmptyContent)

	_, err = f.svc.Post(ctx, sessionFor(f.hiker), f.event.ID, dto.LiveUpdateRequest{Message: "ok", Type: "alert"})
	require.Error(t, err)

	require.Equal(t, int64(2), f.count(t, &models.LiveUpdate{}, "event_id = ?", f.event.ID))
}

func TestLiveUpdatePostAfterLeavingIsForbidden(t *testing.T) {
	f := newLiveUpdateFixture(t)
	ctx := context.Background()

	_, err := f.svc.Post(ctx, sessionFor(f.hiker), f.event.ID, dto.LiveUpdateRequest{Message: "Starting now"})
	require.NoError(t, err)

	_, err = f.participationFixture.svc.Leave(ctx, sessionFor(f.hiker), f.event.ID)
	require.NoError(t, err)

	_, err = f.svc.Post(ctx, sessionFor(f.hiker), f.event.ID, dto.LiveUpdateRequest{Message: "Still here?"})
	require.ErrorIs(t, err, ErrNotEventMember)
}

func TestLiveUpdateListNewestFirst(t *testing.T) {
	f := newLiveUpdateFixture(t)
	ctx := context.Background()

	first, err := f.svc.Post(ctx, sessionFor(f.hiker), f.event.ID, dto.LiveUpdateRequest{Message: "Parking reached"})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.LiveUpdate{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)
	second, err := f.svc.Post(ctx, sessionFor(f.owner), f.event.ID, dto.LiveUpdateRequest{Message: "Summit!"})
	require.NoError(t, err)

	updates, err := f.svc.List(ctx, sessionFor(f.outsider), f.event.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	require.Equal(t, second.ID, updates[0].ID)
	require.Equal(t, first.ID, updates[1].ID)

	_, err = f.svc.List(ctx, sessionFor(f.hiker), "not-an-id", 10, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLiveUpdateDeletePermissions(t *testing.T) {
	f := newLiveUpdateFixture(t)
	ctx := context.Background()

	byHiker, err := f.svc.Post(ctx, sessionFor(f.hiker), f.event.ID, dto.LiveUpdateRequest{Message: "Water refill at the spring"})
	require.NoError(t, err)
	another, err := f.svc.Post(ctx, sessionFor(f.hiker), f.event.ID, dto.LiveUpdateRequest{Message: "Break at the saddle"})
	require.NoError(t, err)
	byOwner, err := f.svc.Post(ctx, sessionFor(f.owner), f.event.ID, dto.LiveUpdateRequest{Message: "Group photo at 12"})
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Delete(ctx, sessionFor(f.outsider), f.event.ID, byHiker.ID), ErrForbidden)
	require.ErrorIs(t, f.svc.Delete(ctx, sessionFor(f.hiker), f.event.ID, byOwner.ID), ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, sessionFor(f.hiker), f.event.ID, byHiker.ID))
	require.NoError(t, f.svc.Delete(ctx, sessionFor(f.owner), f.event.ID, another.ID))
	require.ErrorIs(t, f.svc.Delete(ctx, sessionFor(f.owner), f.event.ID, another.ID), ErrLiveUpdateNotFound)

	admin := Session{UserID: f.outsider.ID, Role: models.RoleAdmin}
	require.NoError(t, f.svc.Delete(ctx, admin, f.event.ID, byOwner.ID))
	require.Zero(t, f.count(t, &models.LiveUpdate{}, "event_id = ?", f.event.ID))
}
