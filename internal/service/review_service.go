package service

import (
	"errors"

	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/internal/permissions"
	"github.com/reviewhub/reviewhub/internal/repository"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrDuplicateReview = errors.New("you have already reviewed this title")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

// ReviewService handles reviews and their comments. Every review mutation
// recomputes the owning title's rating synchronously, in the transaction
// that applied the mutation.
type ReviewService struct {
	reviewRepo  *repository.ReviewRepository
	commentRepo *repository.CommentRepository
	titleRepo   *repository.TitleRepository
}

func NewReviewService(reviewRepo *repository.ReviewRepository, commentRepo *repository.CommentRepository, titleRepo *repository.TitleRepository) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		commentRepo: commentRepo,
		titleRepo:   titleRepo,
	}
}

func (s *ReviewService) ListReviews(titleID uint) ([]*models.Review, error) {
	if err := s.requireTitle(titleID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByTitle(titleID)
}

func (s *ReviewService) GetReview(titleID, reviewID uint) (*models.Review, error) {
	if err := s.requireTitle(titleID); err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.Get(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

func (s *ReviewService) CreateReview(titleID uint, author *models.User, text string, score int) (*models.Review, error) {
	if err := s.requireTitle(titleID); err != nil {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: author.ID,
		Text:     text,
		Score:    score,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Log.Warn("Duplicate review rejected",
				zap.Uint("title_id", titleID),
				zap.Uint("author_id", author.ID),
			)
			return nil, ErrDuplicateReview
		}
		logger.Log.Error("Failed to create review",
			zap.Uint("title_id", titleID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Review created",
		zap.Uint("review_id", review.ID),
		zap.Uint("title_id", titleID),
		zap.Int("score", score),
	)
	review.Author = *author
	return review, nil
}

// UpdateReview changes text and/or score. Only the author, a moderator or
// an admin may mutate; denial happens before anything is written.
func (s *ReviewService) UpdateReview(titleID, reviewID uint, actor *models.User, text *string, score *int) (*models.Review, error) {
	review, err := s.GetReview(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanMutateAuthored(actor, review.AuthorID) {
		return nil, ErrForbidden
	}

	if text != nil {
		review.Text = *text
	}
	if score != nil {
		review.Score = *score
	}
	if err := s.reviewRepo.Update(review); err != nil {
		logger.Log.Error("Failed to update review",
			zap.Uint("review_id", reviewID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Review updated", zap.Uint("review_id", reviewID))
	return review, nil
}

func (s *ReviewService) DeleteReview(titleID, reviewID uint, actor *models.User) error {
	review, err := s.GetReview(titleID, reviewID)
	if err != nil {
		return err
	}
	if !permissions.CanMutateAuthored(actor, review.AuthorID) {
		return ErrForbidden
	}

	if err := s.reviewRepo.Delete(review); err != nil {
		logger.Log.Error("Failed to delete review",
			zap.Uint("review_id", reviewID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Review deleted", zap.Uint("review_id", reviewID))
	return nil
}

func (s *ReviewService) ListComments(titleID, reviewID uint) ([]*models.Comment, error) {
	if _, err := s.GetReview(titleID, reviewID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByReview(reviewID)
}

func (s *ReviewService) GetComment(titleID, reviewID, commentID uint) (*models.Comment, error) {
	if _, err := s.GetReview(titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.Get(reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

func (s *ReviewService) CreateComment(titleID, reviewID uint, author *models.User, text string) (*models.Comment, error) {
	if _, err := s.GetReview(titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: author.ID,
		Text:     text,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		logger.Log.Error("Failed to create comment",
			zap.Uint("review_id", reviewID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Comment created",
		zap.Uint("comment_id", comment.ID),
		zap.Uint("review_id", reviewID),
	)
	comment.Author = *author
	return comment, nil
}

func (s *ReviewService) UpdateComment(titleID, reviewID, commentID uint, actor *models.User, text string) (*models.Comment, error) {
	comment, err := s.GetComment(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanMutateAuthored(actor, comment.AuthorID) {
		return nil, ErrForbidden
	}

	comment.Text = text
	if err := s.commentRepo.Update(comment); err != nil {
		logger.Log.Error("Failed to update comment",
			zap.Uint("comment_id", commentID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Comment updated", zap.Uint("comment_id", commentID))
	return comment, nil
}

func (s *ReviewService) DeleteComment(titleID, reviewID, commentID uint, actor *models.User) error {
	comment, err := s.GetComment(titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if !permissions.CanMutateAuthored(actor, comment.AuthorID) {
		return ErrForbidden
	}

	if err := s.commentRepo.Delete(comment); err != nil {
		logger.Log.Error("Failed to delete comment",
			zap.Uint("comment_id", commentID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Comment deleted", zap.Uint("comment_id", commentID))
	return nil
}

func (s *ReviewService) requireTitle(titleID uint) error {
	title, err := s.titleRepo.GetByID(titleID)
	if err != nil {
		return err
	}
	if title == nil {
		return ErrTitleNotFound
	}
	return nil
}
