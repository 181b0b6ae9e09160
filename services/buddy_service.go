package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ditchAPI/internal/types/buddy"
)

const connectionColumns = `id, user_id, buddy_id, status, initiated_by, last_interaction_at, created_at`

type BuddyService struct {
	db *pgxpool.Pool
}

func NewBuddyService(db *pgxpool.Pool) *BuddyService {
	return &BuddyService{db: db}
}

func scanConnection(row pgx.Row) (*buddy.Connection, error) {
	c := &buddy.Connection{}
	err := row.Scan(&c.ID, &c.UserID, &c.BuddyID, &c.Status, &c.InitiatedBy, &c.LastInteractionAt, &c.CreatedAt)
	return c, err
}

// SendRequest asks the user registered under req.Email to become the
// caller's buddy. A pair holds at most one connection in either direction;
// only a declined one can be requested again.
func (s *BuddyService) SendRequest(ctx context.Context, clerkID string, req *buddy.BuddyRequest) (*buddy.Connection, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	var buddyID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT id FROM profiles WHERE LOWER(email) = $1`, req.Email).Scan(&buddyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find buddy: %w", err)
	}
	if buddyID == userID {
		return nil, fmt.Errorf("%w: cannot add yourself as a buddy", ErrInvalidInput)
	}

	c, err := scanConnection(s.db.QueryRow(ctx, `
		INSERT INTO buddy_connections (id, user_id, buddy_id, status, initiated_by, last_interaction_at, created_at)
		VALUES ($1, $2, $3, $4, $2, NOW(), NOW())
		ON CONFLICT (LEAST(user_id, buddy_id), GREATEST(user_id, buddy_id)) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    buddy_id = EXCLUDED.buddy_id,
		    initiated_by = EXCLUDED.initiated_by,
		    status = EXCLUDED.status,
		    last_interaction_at = NOW()
		WHERE buddy_connections.status = $5
		RETURNING `+connectionColumns,
		uuid.New(), userID, buddyID, buddy.StatusPending, buddy.StatusDeclined,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyConnected
		}
		return nil, fmt.Errorf("failed to create buddy request: %w", err)
	}
	return c, nil
}

// RespondToRequest accepts or declines a pending request addressed to the
// caller.
func (s *BuddyService) RespondToRequest(ctx context.Context, clerkID string, connectionID uuid.UUID, req buddy.RespondRequest) (*buddy.Connection, error) {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	c, err := scanConnection(s.db.QueryRow(ctx, `
		UPDATE buddy_connections
		SET status = $3, last_interaction_at = NOW()
		WHERE id = $1 AND buddy_id = $2 AND status = $4
		RETURNING `+connectionColumns,
		connectionID, userID, req.Status(), buddy.StatusPending,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to respond to buddy request: %w", err)
	}
	return c, nil
}

func (s *BuddyService) listConnections(ctx context.Context, userID uuid.UUID, where string, args ...any) ([]*buddy.Connection, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.user_id, c.buddy_id, c.status, c.initiated_by, c.last_interaction_at, c.created_at,
		       p.id, p.full_name, p.longest_streak, p.quit_date,
		       (SELECT COUNT(*) FROM buddy_messages m
		        WHERE m.connection_id = c.id AND m.sender_id <> $1 AND NOT m.is_read)
		FROM buddy_connections c
		JOIN profiles p ON p.id = CASE WHEN c.user_id = $1 THEN c.buddy_id ELSE c.user_id END
		WHERE `+where+`
		ORDER BY c.last_interaction_at DESC
	`, append([]any{userID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch buddy connections: %w", err)
	}
	defer rows.Close()

	connections := []*buddy.Connection{}
	for rows.Next() {
		c := &buddy.Connection{Buddy: &buddy.Profile{}}
		err := rows.Scan(
			&c.ID, &c.UserID, &c.BuddyID, &c.Status, &c.InitiatedBy, &c.LastInteractionAt, &c.CreatedAt,
			&c.Buddy.ID, &c.Buddy.FullName, &c.Buddy.LongestStreak, &c.Buddy.QuitDate,
			&c.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan buddy connection: %w", err)
		}
		connections = append(connections, c)
	}
	return connections, rows.Err()
}

// ListBuddies returns accepted connections, most recently active first.
func (s *BuddyService) ListBuddies(ctx context.Context, clerkID string) ([]*buddy.Connection, error) {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	return s.listConnections(ctx, userID, `c.status = $2 AND (c.user_id = $1 OR c.buddy_id = $1)`, buddy.StatusAccepted)
}

// ListRequests returns pending requests addressed to the caller.
func (s *BuddyService) ListRequests(ctx context.Context, clerkID string) ([]*buddy.Connection, error) {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	return s.listConnections(ctx, userID, `c.status = $2 AND c.buddy_id = $1`, buddy.StatusPending)
}

// RemoveBuddy deletes a connection the caller is part of, with its messages.
func (s *BuddyService) RemoveBuddy(ctx context.Context, clerkID string, connectionID uuid.UUID) error {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
		DELETE FROM buddy_connections
		WHERE id = $1 AND (user_id = $2 OR buddy_id = $2)
	`, connectionID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove buddy: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// activeConnection loads a connection the user is part of and requires it to
// be accepted.
func activeConnection(ctx context.Context, q querier, connectionID, userID uuid.UUID) (*buddy.Connection, error) {
	c, err := scanConnection(q.QueryRow(ctx, `SELECT `+connectionColumns+` FROM buddy_connections WHERE id = $1`, connectionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load buddy connection: %w", err)
	}
	if !c.Involves(userID) {
		return nil, ErrNotFound
	}
	if c.Status != buddy.StatusAccepted {
		return nil, ErrNotConnected
	}
	return c, nil
}

// GetMessages returns the latest messages of a thread, oldest first, and
// marks the ones the caller received as read. Returned messages show their
// read state from before this call.
func (s *BuddyService) GetMessages(ctx context.Context, clerkID string, connectionID uuid.UUID) ([]*buddy.Message, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	userID, err := getUserID(ctx, tx, clerkID)
	if err != nil {
		return nil, err
	}
	if _, err := activeConnection(ctx, tx, connectionID, userID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, connection_id, sender_id, message, is_read, created_at
		FROM (
			SELECT * FROM buddy_messages
			WHERE connection_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) latest
		ORDER BY created_at ASC
	`, connectionID, buddy.MessagePageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	messages := []*buddy.Message{}
	for rows.Next() {
		m := &buddy.Message{}
		if err := rows.Scan(&m.ID, &m.ConnectionID, &m.SenderID, &m.Message, &m.IsRead, &m.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.IsMine = m.SenderID == userID
		messages = append(messages, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE buddy_messages SET is_read = true
		WHERE connection_id = $1 AND sender_id <> $2 AND NOT is_read
	`, connectionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark messages read: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit messages: %w", err)
	}
	return messages, nil
}

// SendMessage appends a message to an accepted connection and bumps its
// last interaction time.
func (s *BuddyService) SendMessage(ctx context.Context, clerkID string, connectionID uuid.UUID, req *buddy.SendMessageRequest) (*buddy.Message, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	userID, err := getUserID(ctx, tx, clerkID)
	if err != nil {
		return nil, err
	}
	if _, err := activeConnection(ctx, tx, connectionID, userID); err != nil {
		return nil, err
	}

	m := &buddy.Message{IsMine: true}
	err = tx.QueryRow(ctx, `
		INSERT INTO buddy_messages (id, connection_id, sender_id, message, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, connection_id, sender_id, message, is_read, created_at
	`, uuid.New(), connectionID, userID, req.Message).Scan(
		&m.ID, &m.ConnectionID, &m.SenderID, &m.Message, &m.IsRead, &m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE buddy_connections SET last_interaction_at = NOW() WHERE id = $1`, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to update buddy connection: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit message: %w", err)
	}
	return m, nil
}
