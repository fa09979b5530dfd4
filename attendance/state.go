package attendance

import "fmt"

type State int

const (
	Unknown State = iota
	ClockInPending
	ClockOutPending
	Completed
)

func (s State) String() string {
	switch s {
	case ClockInPending:
		return "clock_in_pending"
	case ClockOutPending:
		return "clock_out_pending"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Label is the text shown next to the attendance button.
func (s State) Label() string {
	switch s {
	case ClockInPending:
		return "Clock In"
	case ClockOutPending:
		return "Clock Out"
	case Completed:
		return "Attendance completed"
	default:
		return "Checking status..."
	}
}

// Source tells where a resolved status came from.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceCache   Source = "cache"
	SourceDefault Source = "default"
)

// Status is a resolved, display-ready attendance status.
type Status struct {
	State  State
	Record Record
	Source Source
}

func (s Status) String() string {
	return fmt.Sprintf("%s (%s, %s)", s.State, s.Record.Date, s.Source)
}
