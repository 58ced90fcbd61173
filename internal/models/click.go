package models

import "time"

// DirectReferrer is stored when the request carried no Referer header.
const DirectReferrer = "direct"

// Click is an access event appended when a short link is resolved.
// Events are append-only and are never updated after the fact.
type Click struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Code      string    `gorm:"size:64;index" json:"code"`
	Timestamp time.Time `json:"timestamp"`
	Referrer  string    `gorm:"size:255" json:"referrer"`
	Device    string    `gorm:"size:32" json:"device"`
	Browser   string    `gorm:"size:64" json:"browser"`
	UserAgent string    `gorm:"size:255" json:"userAgent"`
}

// ClickEvent is the raw event passed through the analytics channel.
// It carries only what the redirect handler can capture without extra work;
// device and browser classification happen in the workers.
type ClickEvent struct {
	Code      string
	Timestamp time.Time
	Referrer  string
	UserAgent string
}
