package model

import "time"

// Subscription mirrors a row of the Newsletter sheet.
type Subscription struct {
	ID           int
	Email        string
	SubscribedAt time.Time
}

// ContactMessage mirrors a row of the Contact sheet.
type ContactMessage struct {
	ID          int
	Name        string
	Email       string
	Subject     string
	Message     string
	SubmittedAt time.Time
}
