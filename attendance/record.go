package attendance

import (
	"errors"
	"fmt"
)

type ClockStatus string

const (
	StatusPending   ClockStatus = "pending"
	StatusCompleted ClockStatus = "completed"
)

// Record is one calendar day of attendance for one user.
type Record struct {
	Date           string      `json:"date"` // yyyy-MM-dd
	ClockInStatus  ClockStatus `json:"clockInStatus"`
	ClockOutStatus ClockStatus `json:"clockOutStatus"`
	ClockInTime    *string     `json:"clockInTime,omitempty"`
	ClockOutTime   *string     `json:"clockOutTime,omitempty"`
}

// NewRecord is the record of a day nobody has clocked in on yet.
func NewRecord(date string) Record {
	return Record{
		Date:           date,
		ClockInStatus:  StatusPending,
		ClockOutStatus: StatusPending,
	}
}

var ErrInvalidRecord = errors.New("invalid attendance record")

func validStatus(s ClockStatus) bool {
	return s == StatusPending || s == StatusCompleted
}

func (r Record) Valid() error {
	if r.Date == "" {
		return fmt.Errorf("%w: missing date", ErrInvalidRecord)
	}
	if !validStatus(r.ClockInStatus) || !validStatus(r.ClockOutStatus) {
		return fmt.Errorf("%w: unknown status %q/%q", ErrInvalidRecord, r.ClockInStatus, r.ClockOutStatus)
	}
	if r.ClockOutStatus == StatusCompleted && r.ClockInStatus != StatusCompleted {
		return fmt.Errorf("%w: clocked out without clocking in", ErrInvalidRecord)
	}
	return nil
}

func (r Record) State() State {
	switch {
	case r.ClockOutStatus == StatusCompleted:
		return Completed
	case r.ClockInStatus == StatusCompleted:
		return ClockOutPending
	default:
		return ClockInPending
	}
}
