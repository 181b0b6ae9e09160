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
	"ditchAPI/internal/types/community"
)

type CommunityService struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewCommunityService(db *pgxpool.Pool) *CommunityService {
	return &CommunityService{db: db, now: time.Now}
}

func scanPost(row pgx.Row) (*community.Post, error) {
	p := &community.Post{}
	var reaction *string
	err := row.Scan(
		&p.ID, &p.UserID, &p.AuthorName, &p.Content, &p.PostType, &p.MilestoneData,
		&p.IsAnonymous, &p.ReactionCount, &reaction, &p.CreatedAt,
	)
	if reaction != nil {
		rt := community.ReactionType(*reaction)
		p.MyReaction = &rt
	}
	return p, err
}

// ListPosts returns the newest posts with the caller's own reaction, if any.
func (s *CommunityService) ListPosts(ctx context.Context, clerkID string, limit int) ([]*community.Post, error) {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > community.MaxFeedSize {
		limit = community.DefaultFeedSize
	}

	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.user_id, pr.full_name, p.content, p.post_type, p.milestone_data,
		       p.is_anonymous, p.reaction_count, r.reaction_type, p.created_at
		FROM community_posts p
		JOIN profiles pr ON pr.id = p.user_id
		LEFT JOIN post_reactions r ON r.post_id = p.id AND r.user_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}
	defer rows.Close()

	posts := []*community.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		p.ForViewer(userID)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CreatePost publishes a post. Milestone posts carry a snapshot of the
// author's days clean and puffs avoided at the time of writing.
func (s *CommunityService) CreatePost(ctx context.Context, clerkID string, req *community.CreatePostRequest) (*community.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var (
		userID     uuid.UUID
		fullName   *string
		quitDate   *time.Time
		dailyPuffs *int
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, full_name, quit_date, current_daily_puffs FROM profiles WHERE clerk_id = $1
	`, clerkID).Scan(&userID, &fullName, &quitDate, &dailyPuffs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load author: %w", err)
	}

	var milestone *community.MilestoneData
	if req.PostType == community.PostMilestone {
		puffs := 0
		if dailyPuffs != nil {
			puffs = *dailyPuffs
		}
		milestone = community.NewMilestoneData(progress.ElapsedDays(quitDate, s.now()), puffs)
	}

	p := &community.Post{AuthorName: fullName}
	err = s.db.QueryRow(ctx, `
		INSERT INTO community_posts (id, user_id, content, post_type, milestone_data, is_anonymous, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, user_id, content, post_type, milestone_data, is_anonymous, reaction_count, created_at
	`, uuid.New(), userID, req.Content, req.PostType, milestone, req.IsAnonymous).Scan(
		&p.ID, &p.UserID, &p.Content, &p.PostType, &p.MilestoneData, &p.IsAnonymous, &p.ReactionCount, &p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	p.ForViewer(userID)
	return p, nil
}

// ToggleReaction removes the caller's reaction when one exists, otherwise
// adds one of the requested type. The post row is locked so the stored count
// always matches the reaction rows.
func (s *CommunityService) ToggleReaction(ctx context.Context, clerkID string, postID uuid.UUID, req *community.ReactRequest) (*community.ReactionResult, error) {
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

	var count int
	err = tx.QueryRow(ctx, `SELECT reaction_count FROM community_posts WHERE id = $1 FOR UPDATE`, postID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock post: %w", err)
	}

	result := &community.ReactionResult{PostID: postID}
	removed, err := tx.Exec(ctx, `DELETE FROM post_reactions WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove reaction: %w", err)
	}

	delta := -1
	if removed.RowsAffected() == 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO post_reactions (id, post_id, user_id, reaction_type, created_at)
			VALUES ($1, $2, $3, $4, NOW())
		`, uuid.New(), postID, userID, req.ReactionType)
		if err != nil {
			return nil, fmt.Errorf("failed to add reaction: %w", err)
		}
		delta = 1
		rt := req.ReactionType
		result.Reacted = true
		result.ReactionType = &rt
	}

	err = tx.QueryRow(ctx, `
		UPDATE community_posts SET reaction_count = GREATEST(reaction_count + $2, 0)
		WHERE id = $1
		RETURNING reaction_count
	`, postID, delta).Scan(&result.ReactionCount)
	if err != nil {
		return nil, fmt.Errorf("failed to update reaction count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reaction: %w", err)
	}
	return result, nil
}

// DeletePost removes one of the caller's own posts.
func (s *CommunityService) DeletePost(ctx context.Context, clerkID string, postID uuid.UUID) error {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM community_posts WHERE id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
