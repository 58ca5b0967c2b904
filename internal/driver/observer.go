package driver

import "time"

// Status is the progress state of a file.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusWorking:
		return "working"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Event reports progress for one file. Stage is set while a pass stage
// completes and empty for file-level transitions.
type Event struct {
	Path    string
	Stage   string
	Status  Status
	Err     error
	Elapsed time.Duration
	Cached  bool
}

// Observer receives progress events.
type Observer func(Event)

func (o Observer) emit(ev Event) {
	if o != nil {
		o(ev)
	}
}
