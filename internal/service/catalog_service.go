package service

import (
	"errors"

	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/internal/repository"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrSlugOrNameTaken  = errors.New("name or slug already in use")
)

// CatalogService manages the reference data titles are classified by.
type CatalogService struct {
	categoryRepo *repository.CategoryRepository
	genreRepo    *repository.GenreRepository
}

func NewCatalogService(categoryRepo *repository.CategoryRepository, genreRepo *repository.GenreRepository) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
	}
}

func (s *CatalogService) ListCategories(search string) ([]*models.Category, error) {
	return s.categoryRepo.List(search)
}

func (s *CatalogService) CreateCategory(name, slug string) (*models.Category, error) {
	category := &models.Category{Name: name, Slug: slug}
	if err := s.categoryRepo.Create(category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugOrNameTaken
		}
		logger.Log.Error("Failed to create category", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Category created", zap.String("slug", slug))
	return category, nil
}

func (s *CatalogService) DeleteCategory(slug string) error {
	deleted, err := s.categoryRepo.DeleteBySlug(slug)
	if err != nil {
		logger.Log.Error("Failed to delete category", zap.String("slug", slug), zap.Error(err))
		return err
	}
	if !deleted {
		return ErrCategoryNotFound
	}

	logger.Log.Info("Category deleted", zap.String("slug", slug))
	return nil
}

func (s *CatalogService) ListGenres(search string) ([]*models.Genre, error) {
	return s.genreRepo.List(search)
}

func (s *CatalogService) CreateGenre(name, slug string) (*models.Genre, error) {
	genre := &models.Genre{Name: name, Slug: slug}
	if err := s.genreRepo.Create(genre); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugOrNameTaken
		}
		logger.Log.Error("Failed to create genre", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Genre created", zap.String("slug", slug))
	return genre, nil
}

func (s *CatalogService) DeleteGenre(slug string) error {
	deleted, err := s.genreRepo.DeleteBySlug(slug)
	if err != nil {
		logger.Log.Error("Failed to delete genre", zap.String("slug", slug), zap.Error(err))
		return err
	}
	if !deleted {
		return ErrGenreNotFound
	}

	logger.Log.Info("Genre deleted", zap.String("slug", slug))
	return nil
}
