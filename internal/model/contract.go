package model

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusDraft  Status = "Draft"
	StatusActive Status = "Active"
	StatusClosed Status = "Closed"
)

// ParseStatus accepts only the three known lifecycle values.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusDraft, StatusActive, StatusClosed:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("unknown contract status %q", raw)
	}
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

type Contract struct {
	ID        int64
	Number    string
	ClientID  int64
	Principal float64
	Status    Status
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time

	// ClientName is a display name attached after loading. It is not a
	// stored column; the contract references its client, never owns it.
	ClientName string
}

type ContractRegister struct {
	GeneratedAt time.Time
	Total       int64
	Contracts   []Contract
}
