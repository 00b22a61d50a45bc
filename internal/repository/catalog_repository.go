package repository

import (
	"errors"
	"strings"

	"github.com/reviewhub/reviewhub/internal/models"
	"gorm.io/gorm"
)

// CategoryRepository and GenreRepository manage the reference data titles
// are classified by. Both are keyed by slug on the API surface.

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *CategoryRepository) List(search string) ([]*models.Category, error) {
	var categories []*models.Category
	q := r.db.Order("name")
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if err := q.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("slug = ?", slug).First(&category).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &category, nil
}

func (r *CategoryRepository) DeleteBySlug(slug string) (bool, error) {
	res := r.db.Where("slug = ?", slug).Delete(&models.Category{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type GenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

func (r *GenreRepository) Create(genre *models.Genre) error {
	return r.db.Create(genre).Error
}

func (r *GenreRepository) List(search string) ([]*models.Genre, error) {
	var genres []*models.Genre
	q := r.db.Order("name")
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if err := q.Find(&genres).Error; err != nil {
		return nil, err
	}
	return genres, nil
}

// GetBySlugs resolves slugs to genres, preserving nothing about order.
// A missing slug is reported by returning fewer genres than requested.
func (r *GenreRepository) GetBySlugs(slugs []string) ([]models.Genre, error) {
	var genres []models.Genre
	if err := r.db.Where("slug IN ?", slugs).Find(&genres).Error; err != nil {
		return nil, err
	}
	return genres, nil
}

func (r *GenreRepository) DeleteBySlug(slug string) (bool, error) {
	res := r.db.Where("slug = ?", slug).Delete(&models.Genre{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
