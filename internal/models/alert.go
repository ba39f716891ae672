package models

import (
	"time"
)

// AlertRecord marks an opportunity fingerprint as already notified
type AlertRecord struct {
	Fingerprint string    `db:"fingerprint" json:"fingerprint" validate:"required,len=16"`
	SentAt      time.Time `db:"sent_at" json:"sent_at"`
}
