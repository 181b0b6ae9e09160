package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/progress"
	"ditchAPI/internal/testutil"
	"ditchAPI/internal/types/craving"
	"ditchAPI/internal/types/goal"
	"ditchAPI/internal/types/notification"
	"ditchAPI/internal/types/profile"
	"ditchAPI/internal/types/subscription"
	"ditchAPI/internal/types/usage"
)

func TestProfileAndUsageStore(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	_, clerkID := testutil.CreateProfile(t, pool)
	ctx := context.Background()

	profiles := NewProfileService(pool)
	limit, baseline := 30, 120
	p, err := profiles.UpsertProfile(ctx, clerkID, &profile.UpsertProfileRequest{DailyLimit: &limit, CurrentDailyPuffs: &baseline})
	require.NoError(t, err)
	assert.Equal(t, 30, p.EffectiveDailyLimit())

	neg := -1
	_, err = profiles.UpsertProfile(ctx, clerkID, &profile.UpsertProfileRequest{DailyLimit: &neg})
	assert.ErrorIs(t, err, ErrInvalidInput)

	usageSvc := NewUsageService(pool, profiles)
	for i := 0; i < 3; i++ {
		_, err = usageSvc.AddPuff(ctx, clerkID)
		require.NoError(t, err)
	}
	today, err := usageSvc.GetToday(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 3, today.TotalUnits)
	assert.Equal(t, 27, today.Remaining)

	history, err := usageSvc.GetHistory(ctx, clerkID, 7)
	require.NoError(t, err)
	require.Len(t, history, 7)
	assert.Equal(t, 3, history[6].TotalUnits)

	summary, err := usageSvc.GetSummary(ctx, clerkID, usage.PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)

	_, err = profiles.GetProfile(ctx, "user_missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCravingAndGoalStore(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	userID, clerkID := testutil.CreateProfile(t, pool)
	ctx := context.Background()

	cravings := NewCravingService(pool)
	trigger := "stress"
	c, err := cravings.LogCraving(ctx, clerkID, &craving.LogCravingRequest{Intensity: 7, TriggerType: &trigger})
	require.NoError(t, err)

	cravings.now = func() time.Time { return c.CreatedAt.Add(12 * time.Minute) }
	done, err := cravings.MarkOvercome(ctx, clerkID, c.ID)
	require.NoError(t, err)
	assert.True(t, done.Overcame)
	require.NotNil(t, done.DurationMinutes)
	assert.Equal(t, 12, *done.DurationMinutes)

	_, err = cravings.MarkOvercome(ctx, clerkID, c.ID)
	assert.ErrorIs(t, err, ErrAlreadyOvercome)

	recent, err := cravings.RecentForUser(ctx, userID, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	goals := NewGoalService(pool)
	g, err := goals.CreateGoal(ctx, clerkID, &goal.CreateGoalRequest{Title: "Cut to 20", TargetPuffs: 20, UpdateDailyLimit: true})
	require.NoError(t, err)

	p, err := NewProfileService(pool).GetProfile(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 20, p.EffectiveDailyLimit())

	toggled, err := goals.ToggleGoal(ctx, clerkID, g.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed())
	toggled, err = goals.ToggleGoal(ctx, clerkID, g.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed())

	require.NoError(t, goals.DeleteGoal(ctx, clerkID, g.ID))
	assert.ErrorIs(t, goals.DeleteGoal(ctx, clerkID, g.ID), ErrNotFound)
}

func TestNotificationStoreIsIdempotent(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	userID, clerkID := testutil.CreateProfile(t, pool)
	ctx := context.Background()

	profiles := NewProfileService(pool)
	_, err := profiles.SetQuitDate(ctx, clerkID, ptrTime(time.Now().Add(-73*time.Hour)))
	require.NoError(t, err)

	notifications := NewNotificationService(pool)
	svc := NewProgressService(profiles, notifications, NewUsageService(pool, profiles), nil, nil, nil, logger.Nop())

	created, err := svc.SyncEvents(ctx, clerkID)
	require.NoError(t, err)
	require.NotEmpty(t, created)

	again, err := svc.SyncEvents(ctx, clerkID)
	require.NoError(t, err)
	assert.Empty(t, again)

	// a stale snapshot still cannot write duplicates
	dupes, err := notifications.AppendEvents(ctx, userID, []progress.RecordedEvent{created[0].Event()})
	require.NoError(t, err)
	assert.Empty(t, dupes)

	achievements, err := notifications.GetAchievements(ctx, clerkID)
	require.NoError(t, err)
	assert.Len(t, achievements, 2)

	require.NoError(t, notifications.DeleteNotification(ctx, created[0].ID, clerkID))
	again, err = svc.SyncEvents(ctx, clerkID)
	require.NoError(t, err)
	assert.Empty(t, again, "deleted notifications stay recorded")

	list, err := notifications.GetNotifications(ctx, clerkID, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, len(created)-1, list.TotalCount)

	require.NoError(t, notifications.RegisterDevice(ctx, clerkID, &notification.RegisterDeviceRequest{Token: "tok", Platform: "android"}))
	prefs, err := notifications.GetPreferences(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, prefs.DeviceTokens, 1)
}

func TestNotificationPendingPickup(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	userID, clerkID := testutil.CreateProfile(t, pool)
	ctx := context.Background()

	profiles := NewProfileService(pool)
	_, err := profiles.SetQuitDate(ctx, clerkID, ptrTime(time.Now().Add(-25*time.Hour)))
	require.NoError(t, err)

	notifications := NewNotificationService(pool)
	created, err := NewProgressService(profiles, notifications, NewUsageService(pool, profiles), nil, nil, nil, logger.Nop()).SyncEvents(ctx, clerkID)
	require.NoError(t, err)
	require.NotEmpty(t, created)

	claim := func(grace time.Duration) []*notification.Notification {
		t.Helper()
		all, err := notifications.ClaimPending(ctx, grace, time.Minute, 1000)
		require.NoError(t, err)
		var mine []*notification.Notification
		for _, n := range all {
			if n.UserID == userID {
				mine = append(mine, n)
			}
		}
		return mine
	}

	assert.Empty(t, claim(time.Hour), "fresh rows belong to the in-memory queue")
	assert.Len(t, claim(0), len(created))
	assert.Empty(t, claim(0), "claimed rows are leased")

	id := created[0].ID
	retrying, err := notifications.MarkFailed(ctx, id, "unavailable", 2, 0)
	require.NoError(t, err)
	assert.True(t, retrying)

	due := claim(0)
	require.Len(t, due, 1)
	assert.Equal(t, id, due[0].ID)

	retrying, err = notifications.MarkFailed(ctx, id, "unavailable", 2, 0)
	require.NoError(t, err)
	assert.False(t, retrying)
	assert.Empty(t, claim(0))

	require.NoError(t, notifications.MarkSent(ctx, created[1].ID))
	list, err := notifications.GetNotifications(ctx, clerkID, 1, 50)
	require.NoError(t, err)
	statuses := map[uuid.UUID]notification.NotificationStatus{}
	for _, n := range list.Notifications {
		statuses[n.ID] = n.Status
	}
	assert.Equal(t, notification.StatusFailed, statuses[id])
	assert.Equal(t, notification.StatusSent, statuses[created[1].ID])
}

func TestSubscriptionStore(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	_, clerkID := testutil.CreateProfile(t, pool)
	ctx := context.Background()

	svc := NewSubscriptionService(pool, &fakeCheckout{}, CheckoutURLs{Success: "https://ditch.test/ok", Cancel: "https://ditch.test/cancel"})

	premium, err := svc.IsPremium(ctx, clerkID)
	require.NoError(t, err)
	assert.False(t, premium)

	resp, err := svc.CreateCheckoutSession(ctx, clerkID, "price_1SEcYZB93uMzjmp2ir1NcTD0")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", resp.SessionID)

	premium, err = svc.IsPremium(ctx, clerkID)
	require.NoError(t, err)
	assert.False(t, premium, "pending checkout is not premium")

	sub, err := svc.RecordIAPPurchase(ctx, clerkID, &subscription.IAPPurchaseRequest{ProductID: "com.ditch.app.premium.yearly", TransactionID: "1000000001"})
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, sub.Status)

	premium, err = svc.IsPremium(ctx, clerkID)
	require.NoError(t, err)
	assert.True(t, premium)
}

func ptrTime(t time.Time) *time.Time { return &t }
