package model

import "time"

// Visitor mirrors a row of the Visitors sheet.  Visits from the same IP
// within one hour are collapsed into a single record.
type Visitor struct {
	ID        int
	IP        string
	Country   string
	VisitedAt time.Time
}
