package models

import "time"

// Review is a scored opinion on a title. One review per (author, title);
// the unique index enforces it at the storage layer so concurrent inserts
// cannot race past an existence check.
type Review struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	TitleID  uint      `gorm:"not null;uniqueIndex:idx_reviews_title_author;index" json:"-"`
	Title    Title     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint      `gorm:"not null;uniqueIndex:idx_reviews_title_author" json:"-"`
	Author   User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Score    int       `gorm:"not null;check:score >= 1 AND score <= 10" json:"score"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
}

// Comment is a remark on a review.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	ReviewID uint      `gorm:"not null;index" json:"-"`
	Review   Review    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint      `gorm:"not null" json:"-"`
	Author   User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
}
