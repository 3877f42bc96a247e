package session

import "fmt"

// Status is the position of a Session in its state machine
type Status int

const (
	Idle Status = iota
	Loading
	LoadingMore
	Ready
	Empty
	Errored
)

var statusNames = map[Status]string{
	Idle:        "idle",
	Loading:     "loading",
	LoadingMore: "loading_more",
	Ready:       "ready",
	Empty:       "empty",
	Errored:     "errored",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for st, name := range statusNames {
		if name == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(text))
}

// Busy reports whether a request is in flight
func (s Status) Busy() bool {
	return s == Loading || s == LoadingMore
}
