package models

import "time"

// Post is a short text entry with an optional image, owned by its author.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Title    string    `gorm:"size:150;not null" json:"title"`
	Image    string    `gorm:"size:255" json:"image,omitempty"`
	Body     string    `gorm:"size:500" json:"body"`
	PostedAt time.Time `gorm:"not null;index;autoCreateTime;<-:create" json:"posted_at"`

	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
}
