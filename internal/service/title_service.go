package service

import (
	"errors"
	"time"

	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/internal/repository"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrTitleNotFound = errors.New("title not found")
	ErrYearInFuture  = errors.New("year must not exceed the current year")
	ErrEmptyGenres   = errors.New("genre list must not be empty")
)

// CreateTitleParams is the write shape for titles. Category and genres are
// referenced by slug.
type CreateTitleParams struct {
	Name         string
	Year         int
	Description  string
	CategorySlug string
	GenreSlugs   []string
}

// UpdateTitleParams carries partial updates; nil fields stay untouched.
type UpdateTitleParams struct {
	Name         *string
	Year         *int
	Description  *string
	CategorySlug *string
	GenreSlugs   []string
}

type TitleService struct {
	titleRepo    *repository.TitleRepository
	categoryRepo *repository.CategoryRepository
	genreRepo    *repository.GenreRepository
}

func NewTitleService(titleRepo *repository.TitleRepository, categoryRepo *repository.CategoryRepository, genreRepo *repository.GenreRepository) *TitleService {
	return &TitleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
	}
}

func (s *TitleService) List(filter repository.TitleFilter) ([]*models.Title, error) {
	return s.titleRepo.List(filter)
}

func (s *TitleService) Get(id uint) (*models.Title, error) {
	title, err := s.titleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, ErrTitleNotFound
	}
	return title, nil
}

func (s *TitleService) Create(params CreateTitleParams) (*models.Title, error) {
	if params.Year > time.Now().Year() {
		return nil, ErrYearInFuture
	}
	if len(params.GenreSlugs) == 0 {
		return nil, ErrEmptyGenres
	}

	category, err := s.categoryRepo.GetBySlug(params.CategorySlug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	genres, err := s.resolveGenres(params.GenreSlugs)
	if err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        params.Name,
		Year:        params.Year,
		Description: params.Description,
		CategoryID:  &category.ID,
		Genres:      genres,
	}
	if err := s.titleRepo.Create(title); err != nil {
		logger.Log.Error("Failed to create title",
			zap.String("name", params.Name),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Title created",
		zap.Uint("title_id", title.ID),
		zap.String("name", title.Name),
	)
	return s.Get(title.ID)
}

func (s *TitleService) Update(id uint, params UpdateTitleParams) (*models.Title, error) {
	title, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		title.Name = *params.Name
	}
	if params.Year != nil {
		if *params.Year > time.Now().Year() {
			return nil, ErrYearInFuture
		}
		title.Year = *params.Year
	}
	if params.Description != nil {
		title.Description = *params.Description
	}
	if params.CategorySlug != nil {
		category, err := s.categoryRepo.GetBySlug(*params.CategorySlug)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
		title.CategoryID = &category.ID
	}

	var genres []models.Genre
	if params.GenreSlugs != nil {
		if len(params.GenreSlugs) == 0 {
			return nil, ErrEmptyGenres
		}
		genres, err = s.resolveGenres(params.GenreSlugs)
		if err != nil {
			return nil, err
		}
	}

	if err := s.titleRepo.Update(title, genres); err != nil {
		logger.Log.Error("Failed to update title",
			zap.Uint("title_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Title updated", zap.Uint("title_id", id))
	return s.Get(id)
}

func (s *TitleService) Delete(id uint) error {
	title, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.titleRepo.Delete(title); err != nil {
		logger.Log.Error("Failed to delete title",
			zap.Uint("title_id", id),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Title deleted", zap.Uint("title_id", id))
	return nil
}

func (s *TitleService) resolveGenres(slugs []string) ([]models.Genre, error) {
	genres, err := s.genreRepo.GetBySlugs(slugs)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(slugs) {
		return nil, ErrGenreNotFound
	}
	return genres, nil
}
