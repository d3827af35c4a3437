package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// PageID is a value object identifying one routable canvas page
type PageID struct {
	value string
}

// NewPageID creates a new random PageID
func NewPageID() PageID {
	return PageID{value: uuid.New().String()}
}

// NewPageIDFromString creates a PageID from an existing string
func NewPageIDFromString(id string) (PageID, error) {
	if id == "" {
		return PageID{}, errors.New("page ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return PageID{}, errors.New("page ID must be a valid UUID")
	}
	return PageID{value: id}, nil
}

// String returns the string representation of the PageID
func (id PageID) String() string {
	return id.value
}

// Equals checks if two PageIDs are equal
func (id PageID) Equals(other PageID) bool {
	return id.value == other.value
}

// IsZero checks if the PageID is the zero value. Nodes created before
// multi-page support carry a zero owner page and bind to the first page.
func (id PageID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id PageID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *PageID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("PageID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
