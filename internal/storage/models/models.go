package models

import "time"

type ChatRecord struct {
	ID         string
	UserID     string
	Role       string
	Question   string
	Answer     string
	SourceType string
	LatencyMS  int
	CreatedAt  time.Time
}

type Feedback struct {
	ID        int
	ChatID    string
	Helpful   bool
	Comment   string
	CreatedAt time.Time
}
