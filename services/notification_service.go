package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ditchAPI/internal/progress"
	"ditchAPI/internal/types/notification"
)

const notificationColumns = `id, user_id, type, title, message, event_key, status, is_read, sent_at, failure_reason, created_at`

type NotificationService struct {
	db *pgxpool.Pool
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	n := &notification.Notification{}
	err := row.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.EventKey,
		&n.Status, &n.IsRead, &n.SentAt, &n.FailureReason, &n.CreatedAt,
	)
	return n, err
}

// GetNotifications returns one page of the user's notifications, newest first.
func (s *NotificationService) GetNotifications(ctx context.Context, clerkID string, page, pageSize int) (*notification.NotificationListResponse, error) {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	rows, err := s.db.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*notification.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var unreadCount, totalCount int
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE NOT is_read), COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID).Scan(&unreadCount, &totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return &notification.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unreadCount,
		TotalCount:    totalCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, clerkID string) (int, error) {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read AND deleted_at IS NULL`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark as read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, clerkID string) error {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `UPDATE notifications SET is_read = true WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark all as read: %w", err)
	}
	return nil
}

// DeleteNotification hides the notification from the user. The row stays so
// the event it records is not proposed again.
func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `UPDATE notifications SET deleted_at = NOW() WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationService) GetAchievements(ctx context.Context, clerkID string) ([]*notification.Achievement, error) {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, achievement_type, title, description, unlocked_at
		FROM achievements
		WHERE user_id = $1
		ORDER BY unlocked_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	defer rows.Close()

	achievements := []*notification.Achievement{}
	for rows.Next() {
		a := &notification.Achievement{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.AchievementType, &a.Title, &a.Description, &a.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// RegisterDevice adds a push token to the user's preferences. Registering a
// known token again only refreshes its platform.
func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	userID, err := getUserID(ctx, tx, clerkID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO notification_preferences (user_id, push_enabled, device_tokens, updated_at)
		VALUES ($1, true, '[]'::jsonb, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to create preferences: %w", err)
	}

	var tokens []notification.DeviceToken
	err = tx.QueryRow(ctx, `SELECT device_tokens FROM notification_preferences WHERE user_id = $1 FOR UPDATE`, userID).Scan(&tokens)
	if err != nil {
		return fmt.Errorf("failed to load device tokens: %w", err)
	}

	tokens = upsertDeviceToken(tokens, notification.DeviceToken{Token: req.Token, Platform: req.Platform, AddedAt: time.Now()})

	_, err = tx.Exec(ctx, `UPDATE notification_preferences SET device_tokens = $2, updated_at = NOW() WHERE user_id = $1`, userID, tokens)
	if err != nil {
		return fmt.Errorf("failed to save device tokens: %w", err)
	}

	return tx.Commit(ctx)
}

func upsertDeviceToken(tokens []notification.DeviceToken, t notification.DeviceToken) []notification.DeviceToken {
	for i := range tokens {
		if tokens[i].Token == t.Token {
			tokens[i].Platform = t.Platform
			return tokens
		}
	}
	return append(tokens, t)
}

// GetPreferences falls back to push enabled with no devices when the user
// never registered one.
func (s *NotificationService) GetPreferences(ctx context.Context, userID uuid.UUID) (*notification.NotificationPreferences, error) {
	prefs := &notification.NotificationPreferences{UserID: userID}
	err := s.db.QueryRow(ctx, `
		SELECT push_enabled, device_tokens, updated_at
		FROM notification_preferences
		WHERE user_id = $1
	`, userID).Scan(&prefs.PushEnabled, &prefs.DeviceTokens, &prefs.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			prefs.PushEnabled = true
			return prefs, nil
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return prefs, nil
}

// RecordedEvents is the snapshot of every event already written for the
// user.
func (s *NotificationService) RecordedEvents(ctx context.Context, userID uuid.UUID) ([]progress.RecordedEvent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1 AND event_key IS NOT NULL
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recorded events: %w", err)
	}
	defer rows.Close()

	var events []progress.RecordedEvent
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recorded event: %w", err)
		}
		events = append(events, n.Event())
	}
	return events, rows.Err()
}

// AppendEvents writes proposals in one transaction. The unique (user_id,
// event_key) constraint drops proposals another writer recorded first; only
// the rows actually inserted are returned. Achievements also get a row in
// the achievements table.
func (s *NotificationService) AppendEvents(ctx context.Context, userID uuid.UUID, events []progress.RecordedEvent) ([]*notification.Notification, error) {
	if len(events) == 0 {
		return nil, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var created []*notification.Notification
	for _, ev := range events {
		title := ev.Title
		if ev.Kind == progress.KindAchievement {
			title = notification.AchievementTitle(ev.Title)
		}

		n, err := scanNotification(tx.QueryRow(ctx, `
			INSERT INTO notifications (id, user_id, type, title, message, event_key, status, is_read, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, false, NOW())
			ON CONFLICT (user_id, event_key) DO NOTHING
			RETURNING `+notificationColumns,
			uuid.New(), userID, notification.NotificationType(ev.Kind), title, ev.Body, ev.Key, notification.StatusPending,
		))
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to record %s: %w", ev.Key, err)
		}

		if ev.Kind == progress.KindAchievement {
			_, err = tx.Exec(ctx, `
				INSERT INTO achievements (id, user_id, achievement_type, title, description, unlocked_at)
				VALUES ($1, $2, $3, $4, $5, NOW())
				ON CONFLICT (user_id, achievement_type) DO NOTHING
			`, uuid.New(), userID, ev.Badge, ev.Title, ev.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to record achievement %s: %w", ev.Badge, err)
			}
		}
		created = append(created, n)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit events: %w", err)
	}
	return created, nil
}

func (s *NotificationService) MarkSent(ctx context.Context, notificationID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `
		UPDATE notifications
		SET status = $2, sent_at = NOW(), failure_reason = NULL
		WHERE id = $1
	`, notificationID, notification.StatusSent)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s as sent: %w", notificationID, err)
	}
	return nil
}

// MarkFailed records a failed delivery. While the notification has retries
// left it goes back to pending, due again after backoff; otherwise it stays
// failed. It reports whether a retry was scheduled.
func (s *NotificationService) MarkFailed(ctx context.Context, notificationID uuid.UUID, reason string, maxRetries int, backoff time.Duration) (bool, error) {
	var status notification.NotificationStatus
	err := s.db.QueryRow(ctx, `
		UPDATE notifications
		SET retry_count = retry_count + 1,
		    failure_reason = $2,
		    status = CASE WHEN retry_count + 1 < $3 THEN $5 ELSE $6 END,
		    scheduled_for = CASE WHEN retry_count + 1 < $3 THEN NOW() + make_interval(secs => $4) ELSE NULL END
		WHERE id = $1
		RETURNING status
	`, notificationID, reason, maxRetries, backoff.Seconds(), notification.StatusPending, notification.StatusFailed).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to mark notification %s as failed: %w", notificationID, err)
	}
	return status == notification.StatusPending, nil
}

// ClaimPending leases up to limit pending notifications that are due: retries
// whose scheduled_for has passed, and never-scheduled rows older than grace
// (their in-memory enqueue was lost). Claimed rows are pushed lease into the
// future so the next pickup does not take them while they are in flight.
func (s *NotificationService) ClaimPending(ctx context.Context, grace, lease time.Duration, limit int) ([]*notification.Notification, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE notifications
		SET scheduled_for = NOW() + make_interval(secs => $3)
		WHERE id IN (
			SELECT id FROM notifications
			WHERE status = $1
			  AND deleted_at IS NULL
			  AND (
			    (scheduled_for IS NULL AND created_at <= NOW() - make_interval(secs => $2))
			    OR scheduled_for <= NOW()
			  )
			ORDER BY created_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+notificationColumns,
		notification.StatusPending, grace.Seconds(), lease.Seconds(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending notifications: %w", err)
	}
	defer rows.Close()

	var claimed []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending notification: %w", err)
		}
		claimed = append(claimed, n)
	}
	return claimed, rows.Err()
}

// PurgeRead deletes read motivation notifications older than age. Catalog
// events keep their rows so they never fire twice.
func (s *NotificationService) PurgeRead(ctx context.Context, age time.Duration) (int64, error) {
	result, err := s.db.Exec(ctx, `
		DELETE FROM notifications
		WHERE is_read
		  AND type = $2
		  AND created_at < NOW() - make_interval(secs => $1)
	`, age.Seconds(), notification.TypeMotivation)
	if err != nil {
		return 0, fmt.Errorf("failed to purge read notifications: %w", err)
	}
	return result.RowsAffected(), nil
}
