package testutil

import (
	"testing"

	"github.com/reviewhub/reviewhub/internal/models"
	"gorm.io/gorm"
)

// CreateTestUser persists an active user with the given role.
func CreateTestUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return user
}

// CreateTestCategory persists a category with slug derived from the name.
func CreateTestCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	category := &models.Category{Name: name, Slug: slug}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("Failed to create test category %s: %v", slug, err)
	}
	return category
}

func CreateTestGenre(t *testing.T, db *gorm.DB, name, slug string) *models.Genre {
	genre := &models.Genre{Name: name, Slug: slug}
	if err := db.Create(genre).Error; err != nil {
		t.Fatalf("Failed to create test genre %s: %v", slug, err)
	}
	return genre
}

func CreateTestTitle(t *testing.T, db *gorm.DB, name string, year int, category *models.Category, genres ...models.Genre) *models.Title {
	title := &models.Title{
		Name:   name,
		Year:   year,
		Genres: genres,
	}
	if category != nil {
		title.CategoryID = &category.ID
	}
	if err := db.Create(title).Error; err != nil {
		t.Fatalf("Failed to create test title %s: %v", name, err)
	}
	return title
}

func CreateTestReview(t *testing.T, db *gorm.DB, title *models.Title, author *models.User, score int) *models.Review {
	review := &models.Review{
		TitleID:  title.ID,
		AuthorID: author.ID,
		Text:     "test review",
		Score:    score,
	}
	if err := db.Create(review).Error; err != nil {
		t.Fatalf("Failed to create test review: %v", err)
	}
	return review
}
