package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// Phone accepts either a JSON string or a JSON number.
type Phone string

func (p *Phone) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Phone(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("phone must be a string or a number")
	}

	*p = Phone(n.String())
	return nil
}

type OwnerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ContactResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Favorite   bool       `json:"favorite"`
	NumberType string     `json:"number_type"`
	BirthDate  string     `json:"birth_date"`
	Owner      string     `json:"owner"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// ContactListItem is a contact in list responses: owner expanded, no timestamps.
type ContactListItem struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone"`
	Favorite   bool         `json:"favorite"`
	NumberType string       `json:"number_type"`
	BirthDate  string       `json:"birth_date"`
	Owner      OwnerSummary `json:"owner"`
}
