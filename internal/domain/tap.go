package domain

import "time"

// TapRecord is the receipt written for every granted ride. Append-only:
// the core never updates or deletes ledger rows, and never reads old rows
// to make a decision, so the archiver may remove them at any time.
type TapRecord struct {
	ID         string
	CardNumber string
	Location   string
	Timestamp  time.Time
}
