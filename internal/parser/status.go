package parser

import "fmt"

// Status is the lifecycle state of the live transcript.
type Status int

const (
	// StatusUndetermined is the state before a document has been scanned.
	StatusUndetermined Status = iota
	StatusBefore
	StatusDuring
	StatusAfter
	StatusTranscriptEnded
	StatusError
)

var statusNames = map[Status]string{
	StatusUndetermined:    "undetermined",
	StatusBefore:          "before",
	StatusDuring:          "during",
	StatusAfter:           "after",
	StatusTranscriptEnded: "transcript-end",
	StatusError:           "error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText encodes the status with the names the front end expects.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus maps a status name back to its value.
func ParseStatus(name string) (Status, error) {
	for status, candidate := range statusNames {
		if candidate == name {
			return status, nil
		}
	}
	return StatusUndetermined, fmt.Errorf("parser: unknown status %q", name)
}

// finalizeStatus applies the precedence rules once segmentation is done: a
// boundary signal always wins, otherwise any produced segment means the
// transcript is live.
func finalizeStatus(signal Status, segments int) Status {
	if signal != StatusUndetermined {
		return signal
	}
	if segments > 0 {
		return StatusDuring
	}
	return StatusBefore
}
