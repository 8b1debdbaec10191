package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulsefeed/backend/internal/models"
	"github.com/pulsefeed/backend/internal/types"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrEmptyBody       = errors.New("body must not be empty")
	ErrBodyTooLong     = errors.New("body exceeds the maximum length")
	ErrInvalidPrivacy  = errors.New("privacy must be public or private")
)

// MaxPostBody is the maximum post body length in runes.
const MaxPostBody = 2000

type PostService struct {
	db         *gorm.DB
	visibility *VisibilityService
}

func NewPostService(db *gorm.DB, visibility *VisibilityService) *PostService {
	return &PostService{db: db, visibility: visibility}
}

func validateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > MaxPostBody {
		return ErrBodyTooLong
	}
	return nil
}

func validatePrivacy(privacy string) error {
	if privacy != models.PrivacyPublic && privacy != models.PrivacyPrivate {
		return ErrInvalidPrivacy
	}
	return nil
}

func (s *PostService) Create(ctx context.Context, userID uuid.UUID, req *types.CreatePostRequest) (*models.Post, error) {
	if err := validateBody(req.Body); err != nil {
		return nil, err
	}
	privacy := req.Privacy
	if privacy == "" {
		privacy = models.PrivacyPublic
	}
	if err := validatePrivacy(privacy); err != nil {
		return nil, err
	}

	post := models.Post{
		UserID:    userID,
		Body:      req.Body,
		ImageURL:  req.ImageURL,
		Privacy:   privacy,
		Status:    req.Status,
		Embedding: GenerateEmbedding(req.Body),
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	if err := s.db.WithContext(ctx).Preload("User").First(&post, "id = ?", post.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload post: %w", err)
	}
	return &post, nil
}

// Get returns a single post if the viewer may see it. Posts the viewer
// may not see are reported as not found.
func (s *PostService) Get(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("User").First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to look up post: %w", err)
	}
	ok, err := s.visibility.CanViewPost(ctx, &post, viewer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPostNotFound
	}
	return &post, nil
}

// Update modifies a post owned by ownerID.
func (s *PostService) Update(ctx context.Context, id, ownerID uuid.UUID, req *types.UpdatePostRequest) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to look up post: %w", err)
	}

	if req.Body != nil {
		if err := validateBody(*req.Body); err != nil {
			return nil, err
		}
		post.Body = *req.Body
		post.Embedding = GenerateEmbedding(*req.Body)
	}
	if req.ImageURL != nil {
		post.ImageURL = *req.ImageURL
	}
	if req.Privacy != nil {
		if err := validatePrivacy(*req.Privacy); err != nil {
			return nil, err
		}
		post.Privacy = *req.Privacy
	}
	if req.Status != nil {
		post.Status = *req.Status
	}

	if err := s.db.WithContext(ctx).Save(&post).Error; err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	if err := s.db.WithContext(ctx).Preload("User").First(&post, "id = ?", post.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload post: %w", err)
	}
	return &post, nil
}

// Delete removes a post owned by ownerID along with its comments and
// reactions.
func (s *PostService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Post{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostReaction{}).Error; err != nil {
			return fmt.Errorf("failed to delete reactions: %w", err)
		}
		return nil
	})
}

// ToggleReaction likes the post for userID, or removes an existing like.
// The insert relies on the unique index over (user_id, post_id): a
// conflicting row, whether from a previous toggle or a concurrent one,
// flips the call into the unlike branch instead of failing.
// The returned count is read back inside the same transaction.
func (s *PostService) ToggleReaction(ctx context.Context, postID, userID uuid.UUID) (*types.ToggleReactionResponse, error) {
	if _, err := s.Get(ctx, postID, &userID); err != nil {
		return nil, err
	}

	var resp types.ToggleReactionResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reaction := models.PostReaction{PostID: postID, UserID: userID}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).Create(&reaction)
		if res.Error != nil {
			return fmt.Errorf("failed to create reaction: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			if err := tx.Where("post_id = ? AND user_id = ?", postID, userID).
				Delete(&models.PostReaction{}).Error; err != nil {
				return fmt.Errorf("failed to remove reaction: %w", err)
			}
			resp.Status = "unliked"
		} else {
			resp.Status = "liked"
		}

		var count int64
		if err := tx.Model(&models.PostReaction{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count reactions: %w", err)
		}
		resp.LikeCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListComments returns the comments of a post visible to the viewer,
// newest first.
func (s *PostService) ListComments(ctx context.Context, postID uuid.UUID, viewer *uuid.UUID) ([]models.Comment, error) {
	if _, err := s.Get(ctx, postID, viewer); err != nil {
		return nil, err
	}
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *PostService) CreateComment(ctx context.Context, postID, userID uuid.UUID, body string) (*models.Comment, error) {
	if err := validateBody(body); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, postID, &userID); err != nil {
		return nil, err
	}
	comment := models.Comment{PostID: postID, UserID: userID, Body: body}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	if err := s.db.WithContext(ctx).Preload("User").First(&comment, "id = ?", comment.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload comment: %w", err)
	}
	return &comment, nil
}

// PublicFeed lists public posts of publicly visible profiles. A non-empty
// query orders results by vector similarity on Postgres and falls back to
// a substring match elsewhere.
func (s *PostService) PublicFeed(ctx context.Context, q string) ([]models.Post, error) {
	query := s.db.WithContext(ctx).
		Joins("JOIN settings ON settings.user_id = posts.user_id").
		Where("posts.privacy = ? AND settings.profile_visibility = ?",
			models.PrivacyPublic, models.PrivacyPublic).
		Preload("User")

	var posts []models.Post
	if q != "" {
		if s.db.Dialector.Name() == "postgres" {
			vec := GenerateEmbedding(q)
			query = query.Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "posts.embedding <-> ?", Vars: []interface{}{vec}},
			})
		} else {
			like := "%" + strings.ToLower(q) + "%"
			query = query.
				Where("LOWER(posts.body) LIKE ?", like).
				Order("posts.created_at DESC, posts.id DESC")
		}
	} else {
		query = query.Order("posts.created_at DESC, posts.id DESC")
	}

	if err := query.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list public posts: %w", err)
	}
	return posts, nil
}

// Annotate converts posts into responses carrying like counts and the
// viewer's own like state.
func (s *PostService) Annotate(ctx context.Context, posts []models.Post, viewer *uuid.UUID) ([]types.PostResponse, error) {
	responses := make([]types.PostResponse, 0, len(posts))
	for i := range posts {
		resp, err := s.annotateOne(ctx, &posts[i], viewer)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// AnnotateOne builds the response for a single post.
func (s *PostService) AnnotateOne(ctx context.Context, post *models.Post, viewer *uuid.UUID) (*types.PostResponse, error) {
	return s.annotateOne(ctx, post, viewer)
}

func (s *PostService) annotateOne(ctx context.Context, post *models.Post, viewer *uuid.UUID) (*types.PostResponse, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.PostReaction{}).
		Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count reactions: %w", err)
	}

	isLiked := false
	if viewer != nil {
		var liked int64
		if err := s.db.WithContext(ctx).Model(&models.PostReaction{}).
			Where("post_id = ? AND user_id = ?", post.ID, *viewer).
			Count(&liked).Error; err != nil {
			return nil, fmt.Errorf("failed to look up reaction: %w", err)
		}
		isLiked = liked > 0
	}

	var author string
	if post.User != nil {
		author = post.User.FullName()
	}

	return &types.PostResponse{
		ID:        post.ID,
		UserID:    post.UserID,
		Author:    author,
		Body:      post.Body,
		ImageURL:  post.ImageURL,
		Privacy:   post.Privacy,
		Status:    post.Status,
		LikeCount: count,
		IsLiked:   isLiked,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}, nil
}
