package model

import (
	"fmt"
	"strings"
	"time"
)

type Client struct {
	ID             int64
	LastName       string
	FirstName      string
	MiddleName     string
	PassportSeries string
	PassportNumber string
	BirthDate      time.Time
	Phone          string
	Email          string
	Address        string
}

// DisplayName is "LastName FirstName MiddleName" with empty parts dropped.
func (c Client) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.LastName, c.FirstName, c.MiddleName} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, " ")
}

// ClientShort is the list representation: initials instead of full names,
// passport collapsed into one field, a single preferred contact.
type ClientShort struct {
	ID        int64
	Name      string
	Passport  string
	BirthDate time.Time
	Contact   string
}

func (c Client) Short(preferContact string) ClientShort {
	contact := c.Phone
	if preferContact == "email" || contact == "" {
		contact = c.Email
	}
	return ClientShort{
		ID:        c.ID,
		Name:      c.shortName(),
		Passport:  strings.TrimSpace(c.PassportSeries + " " + c.PassportNumber),
		BirthDate: c.BirthDate,
		Contact:   contact,
	}
}

func (c Client) shortName() string {
	name := c.LastName
	for _, p := range []string{c.FirstName, c.MiddleName} {
		r := []rune(strings.TrimSpace(p))
		if len(r) > 0 {
			name = fmt.Sprintf("%s %c.", name, r[0])
		}
	}
	return name
}
