package models

import "time"

// DonationStatus is the donation lifecycle enum.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusFailed    DonationStatus = "failed"
)

// IsValidDonationStatus returns true for a known status value.
func IsValidDonationStatus(s DonationStatus) bool {
	switch s {
	case DonationStatusPending, DonationStatusCompleted, DonationStatusFailed:
		return true
	}
	return false
}

// Donation is a recorded pledge to an org. There is no payment gateway:
// donations are marked completed on creation.
type Donation struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	DonorName      string         `gorm:"column:donor_name;size:255;not null" json:"donor_name"`
	DonorEmail     *string        `gorm:"column:donor_email;size:255" json:"donor_email"`
	OrgID          uint           `gorm:"column:org_id;not null;index" json:"org_id"`
	Amount         float64        `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency       string         `gorm:"size:3;not null;default:BRL" json:"currency"`
	Status         DonationStatus `gorm:"size:20;not null;default:pending" json:"status"`
	Message        *string        `gorm:"type:text" json:"message"`
	PeopleImpacted int            `gorm:"column:people_impacted;not null;default:1" json:"people_impacted"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    *time.Time     `gorm:"column:completed_at" json:"completed_at"`
}

func (Donation) TableName() string {
	return "donations"
}

// DonationLedger is one append-only audit row attached to a donation. Entries
// are never updated or deleted once created.
type DonationLedger struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	DonationID     uint      `gorm:"column:donation_id;not null;index" json:"donation_id"`
	EntryType      string    `gorm:"column:entry_type;size:50;not null" json:"entry_type"`
	Description    string    `gorm:"type:text;not null" json:"description"`
	Amount         *float64  `gorm:"type:numeric(10,2)" json:"amount"`
	LedgerMetadata *string   `gorm:"column:ledger_metadata;type:text" json:"ledger_metadata"`
	CreatedAt      time.Time `json:"created_at"`
}

func (DonationLedger) TableName() string {
	return "donation_ledger"
}
