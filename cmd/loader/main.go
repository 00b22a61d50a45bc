// Command loader bulk-imports catalog and review data from CSV files.
//
// Usage: loader <kind> <file.csv>
//
// Kinds: category, genre, title, title_genre, user, review, comment.
// Foreign keys are resolved by numeric id, so files must be loaded in
// dependency order (categories and genres before titles, titles and users
// before reviews, reviews before comments).
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/reviewhub/reviewhub/internal/config"
	"github.com/reviewhub/reviewhub/internal/database"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/internal/repository"
)

func main() {
	if len(os.Args) != 3 {
		log.Fatalf("usage: %s <kind> <file.csv>", os.Args[0])
	}
	kind, path := os.Args[1], os.Args[2]

	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	rows, err := readCSV(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}

	var count int
	switch kind {
	case "category":
		count, err = importCategories(rows)
	case "genre":
		count, err = importGenres(rows)
	case "title":
		count, err = importTitles(rows)
	case "title_genre":
		count, err = importTitleGenres(rows)
	case "user":
		count, err = importUsers(rows)
	case "review":
		count, err = importReviews(rows)
		if err == nil {
			err = repository.NewReviewRepository(database.DB).RecomputeAllRatings()
		}
	case "comment":
		count, err = importComments(rows)
	default:
		log.Fatalf("Unknown kind %q", kind)
	}
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Imported %d %s records", count, kind)
}

// readCSV returns the file as a slice of header-keyed maps.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, err
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			row[name] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func importCategories(rows []map[string]string) (int, error) {
	for _, row := range rows {
		id, err := parseID(row["id"])
		if err != nil {
			return 0, err
		}
		c := models.Category{ID: id, Name: row["name"], Slug: row["slug"]}
		if err := database.DB.Create(&c).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func importGenres(rows []map[string]string) (int, error) {
	for _, row := range rows {
		id, err := parseID(row["id"])
		if err != nil {
			return 0, err
		}
		g := models.Genre{ID: id, Name: row["name"], Slug: row["slug"]}
		if err := database.DB.Create(&g).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func importTitles(rows []map[string]string) (int, error) {
	for _, row := range rows {
		id, err := parseID(row["id"])
		if err != nil {
			return 0, err
		}
		year, err := strconv.Atoi(row["year"])
		if err != nil {
			return 0, fmt.Errorf("title %d: bad year %q", id, row["year"])
		}
		t := models.Title{ID: id, Name: row["name"], Year: year, Description: row["description"]}
		if raw := row["category"]; raw != "" {
			categoryID, err := parseID(raw)
			if err != nil {
				return 0, err
			}
			if err := require(&models.Category{}, categoryID); err != nil {
				return 0, err
			}
			t.CategoryID = &categoryID
		}
		if err := database.DB.Create(&t).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func importTitleGenres(rows []map[string]string) (int, error) {
	for _, row := range rows {
		titleID, err := parseID(row["title_id"])
		if err != nil {
			return 0, err
		}
		genreID, err := parseID(row["genre_id"])
		if err != nil {
			return 0, err
		}

		var title models.Title
		if err := database.DB.First(&title, titleID).Error; err != nil {
			return 0, fmt.Errorf("title id=%d: %w", titleID, err)
		}
		var genre models.Genre
		if err := database.DB.First(&genre, genreID).Error; err != nil {
			return 0, fmt.Errorf("genre id=%d: %w", genreID, err)
		}
		if err := database.DB.Model(&title).Association("Genres").Append(&genre); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func importUsers(rows []map[string]string) (int, error) {
	for _, row := range rows {
		id, err := parseID(row["id"])
		if err != nil {
			return 0, err
		}
		role := models.Role(row["role"])
		if role == "" {
			role = models.RoleUser
		}
		u := models.User{
			ID:        id,
			Username:  row["username"],
			Email:     row["email"],
			FirstName: row["first_name"],
			LastName:  row["last_name"],
			Bio:       row["bio"],
			Role:      role,
			IsActive:  true,
		}
		if err := database.DB.Create(&u).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func importReviews(rows []map[string]string) (int, error) {
	for _, row := range rows {
		id, err := parseID(row["id"])
		if err != nil {
			return 0, err
		}
		titleID, err := parseID(row["title_id"])
		if err != nil {
			return 0, err
		}
		authorID, err := parseID(row["author"])
		if err != nil {
			return 0, err
		}
		score, err := strconv.Atoi(row["score"])
		if err != nil {
			return 0, fmt.Errorf("review %d: bad score %q", id, row["score"])
		}
		if err := require(&models.Title{}, titleID); err != nil {
			return 0, err
		}
		if err := require(&models.User{}, authorID); err != nil {
			return 0, err
		}
		rv := models.Review{
			ID:       id,
			TitleID:  titleID,
			AuthorID: authorID,
			Text:     row["text"],
			Score:    score,
			PubDate:  parseDate(row["pub_date"]),
		}
		if err := database.DB.Create(&rv).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func importComments(rows []map[string]string) (int, error) {
	for _, row := range rows {
		id, err := parseID(row["id"])
		if err != nil {
			return 0, err
		}
		reviewID, err := parseID(row["review_id"])
		if err != nil {
			return 0, err
		}
		authorID, err := parseID(row["author"])
		if err != nil {
			return 0, err
		}
		if err := require(&models.Review{}, reviewID); err != nil {
			return 0, err
		}
		if err := require(&models.User{}, authorID); err != nil {
			return 0, err
		}
		cm := models.Comment{
			ID:       id,
			ReviewID: reviewID,
			AuthorID: authorID,
			Text:     row["text"],
			PubDate:  parseDate(row["pub_date"]),
		}
		if err := database.DB.Create(&cm).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad id %q", raw)
	}
	return uint(id), nil
}

func parseDate(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Now()
	}
	return t
}

// require fails when the referenced record does not exist.
func require(model interface{}, id uint) error {
	if err := database.DB.First(model, id).Error; err != nil {
		return fmt.Errorf("%T id=%d: %w", model, id, err)
	}
	return nil
}
