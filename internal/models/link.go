package models

import "time"

// AnonymousOwner is the sentinel owner identifier stored when no caller
// identity accompanied the create request.
const AnonymousOwner = "anonymous"

// Link represents a shortened link. Every field except Clicks is immutable
// after creation; Clicks only ever grows, as a side effect of resolution.
type Link struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Code      string    `gorm:"uniqueIndex;size:64;not null" json:"code"`
	LongURL   string    `gorm:"not null" json:"longUrl"`
	ShortURL  string    `gorm:"not null" json:"shortUrl"`
	Clicks    int64     `gorm:"not null;default:0" json:"clicks"`
	CreatedAt time.Time `json:"date"`
	OwnerID   string    `gorm:"size:64" json:"ownerId"`
}
