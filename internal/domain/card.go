package domain

import "time"

type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
)

// Card is the hardware fare card. Provisioning happens outside this system;
// the core only ever reads its status.
type Card struct {
	Number    string
	Status    CardStatus
	CreatedAt time.Time
}
