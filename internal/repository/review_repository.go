package repository

import (
	"database/sql"
	"errors"
	"math"

	"github.com/reviewhub/reviewhub/internal/models"
	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts the review and recomputes the title rating in one
// transaction. The unique (title, author) index surfaces duplicates as
// gorm.ErrDuplicatedKey.
func (r *ReviewRepository) Create(review *models.Review) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, review.TitleID)
	})
}

func (r *ReviewRepository) Update(review *models.Review) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Title", "Author").Save(review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, review.TitleID)
	})
}

func (r *ReviewRepository) Delete(review *models.Review) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, review.TitleID)
	})
}

func (r *ReviewRepository) ListByTitle(titleID uint) ([]*models.Review, error) {
	var reviews []*models.Review
	err := r.db.Preload("Author").
		Where("title_id = ?", titleID).
		Order("pub_date").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) Get(titleID, reviewID uint) (*models.Review, error) {
	var review models.Review
	err := r.db.Preload("Author").
		Where("title_id = ? AND id = ?", titleID, reviewID).
		First(&review).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &review, nil
}

// RecomputeAllRatings refreshes the derived rating of every title. Used by
// the bulk loader after importing reviews outside the normal write path.
func (r *ReviewRepository) RecomputeAllRatings() error {
	var titleIDs []uint
	if err := r.db.Model(&models.Title{}).Pluck("id", &titleIDs).Error; err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range titleIDs {
			if err := recomputeRating(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// recomputeRating sets the title's rating to the mean of its review scores,
// rounded to one decimal, or NULL when no reviews remain. Runs inside the
// transaction that mutated the review so readers never see a stale rating.
func recomputeRating(tx *gorm.DB, titleID uint) error {
	var avg sql.NullFloat64
	err := tx.Model(&models.Review{}).
		Where("title_id = ?", titleID).
		Select("AVG(score)").
		Scan(&avg).Error
	if err != nil {
		return err
	}

	if !avg.Valid {
		return tx.Model(&models.Title{}).Where("id = ?", titleID).Update("rating", nil).Error
	}

	rounded := math.Round(avg.Float64*10) / 10
	return tx.Model(&models.Title{}).Where("id = ?", titleID).Update("rating", rounded).Error
}
