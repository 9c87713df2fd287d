package status

import (
	"encoding/json"
	"fmt"

	"yunion.io/x/pkg/errors"
)

// Status is the reported state of the garage door.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

const (
	ErrInvalidStatus = errors.Error("InvalidStatus")
)

// Encode returns the wire and storage form of s.
func Encode(s Status) string {
	switch s {
	case StatusOpen:
		return "OPEN"
	case StatusClosed:
		return "CLOSED"
	}
	return ""
}

// Decode maps a stored or submitted string back to a Status. Any string other
// than the two exact upper-case encodings yields ok == false.
func Decode(s string) (Status, bool) {
	switch s {
	case "OPEN":
		return StatusOpen, true
	case "CLOSED":
		return StatusClosed, true
	}
	return "", false
}

func (s Status) IsValid() bool {
	_, ok := Decode(string(s))
	return ok
}

func (s Status) String() string {
	return Encode(s)
}

func (s Status) MarshalJSON() ([]byte, error) {
	if !s.IsValid() {
		return nil, errors.Wrapf(ErrInvalidStatus, "%q", string(s))
	}
	return json.Marshal(Encode(s))
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.Wrap(err, "status must be a string")
	}
	decoded, ok := Decode(str)
	if !ok {
		return errors.Wrapf(ErrInvalidStatus, "%q is not one of OPEN, CLOSED", str)
	}
	*s = decoded
	return nil
}

// GarageDoorStatus is the only record the service keeps. It is built per
// request and never cached.
type GarageDoorStatus struct {
	Status Status `json:"status"`
}

func (g GarageDoorStatus) String() string {
	return fmt.Sprintf("GarageDoorStatus{status: %s}", Encode(g.Status))
}

// ParseGarageDoorStatus decodes a request body. A body without a status field
// is rejected the same way as one carrying an unknown status.
func ParseGarageDoorStatus(data []byte) (*GarageDoorStatus, error) {
	var raw struct {
		Status *Status `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode garage door status")
	}
	if raw.Status == nil {
		return nil, errors.Wrap(ErrInvalidStatus, "missing status field")
	}
	return &GarageDoorStatus{Status: *raw.Status}, nil
}
