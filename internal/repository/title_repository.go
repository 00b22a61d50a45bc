package repository

import (
	"errors"
	"strings"

	"github.com/reviewhub/reviewhub/internal/models"
	"gorm.io/gorm"
)

// TitleFilter holds the optional title listing filters. All set filters
// combine with AND semantics.
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Year         *int
	Name         string // case-insensitive substring
}

type TitleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) *TitleRepository {
	return &TitleRepository{db: db}
}

func (r *TitleRepository) Create(title *models.Title) error {
	return r.db.Create(title).Error
}

func (r *TitleRepository) List(filter TitleFilter) ([]*models.Title, error) {
	var titles []*models.Title
	q := r.db.Model(&models.Title{}).
		Preload("Category").
		Preload("Genres").
		Order("titles.name")

	if filter.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.GenreSlug != "" {
		q = q.Joins("JOIN title_genres ON title_genres.title_id = titles.id").
			Joins("JOIN genres ON genres.id = title_genres.genre_id").
			Where("genres.slug = ?", filter.GenreSlug)
	}
	if filter.Year != nil {
		q = q.Where("titles.year = ?", *filter.Year)
	}
	if filter.Name != "" {
		q = q.Where("LOWER(titles.name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}

	if err := q.Find(&titles).Error; err != nil {
		return nil, err
	}
	return titles, nil
}

func (r *TitleRepository) GetByID(id uint) (*models.Title, error) {
	var title models.Title
	err := r.db.Preload("Category").Preload("Genres").First(&title, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &title, nil
}

// Update saves scalar fields and, when genres is non-nil, replaces the
// genre set in the same transaction.
func (r *TitleRepository) Update(title *models.Title, genres []models.Genre) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Genres", "Category", "Rating").Save(title).Error; err != nil {
			return err
		}
		if genres != nil {
			if err := tx.Model(title).Association("Genres").Replace(genres); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TitleRepository) Delete(title *models.Title) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(title).Association("Genres").Clear(); err != nil {
			return err
		}
		return tx.Delete(title).Error
	})
}
