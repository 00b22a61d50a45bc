package models

// Category classifies a title (e.g. book, film). Reference data managed by admins.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(256);uniqueIndex;not null" json:"name"`
	Slug string `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug"`
}

// Genre tags a title. A title carries any number of genres.
type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(256);uniqueIndex;not null" json:"name"`
	Slug string `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug"`
}

// Title is a reviewable work. Rating is derived from its reviews and is
// never written by clients; it is recomputed whenever a review changes.
type Title struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(256);not null;index" json:"name"`
	Year        int       `gorm:"not null" json:"year"`
	Description string    `gorm:"type:text" json:"description"`
	CategoryID  *uint     `json:"-"`
	Category    *Category `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Genres      []Genre   `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE" json:"genre,omitempty"`
	Rating      *float64  `json:"rating"`
}
