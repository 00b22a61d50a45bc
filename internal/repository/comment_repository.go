package repository

import (
	"errors"

	"github.com/reviewhub/reviewhub/internal/models"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *CommentRepository) Update(comment *models.Comment) error {
	return r.db.Omit("Review", "Author").Save(comment).Error
}

func (r *CommentRepository) Delete(comment *models.Comment) error {
	return r.db.Delete(comment).Error
}

func (r *CommentRepository) ListByReview(reviewID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.Preload("Author").
		Where("review_id = ?", reviewID).
		Order("pub_date").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) Get(reviewID, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Preload("Author").
		Where("review_id = ? AND id = ?", reviewID, commentID).
		First(&comment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &comment, nil
}
