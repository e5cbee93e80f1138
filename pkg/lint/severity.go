package lint

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSeverity is returned when parsing an unknown severity name.
var ErrUnknownSeverity = errors.New("unknown severity")

// Severity of a [Diagnostic], numbered as in the Language Server Protocol.
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// AllSeverities lists severity names in order of decreasing severity.
var AllSeverities = []string{"error", "warning", "information", "hint"}

func (s Severity) String() string {
	if s < SeverityError || s > SeverityHint {
		return fmt.Sprintf("severity(%d)", int(s))
	}

	return AllSeverities[s-1]
}

// ParseSeverity returns the [Severity] with the given name.
// An empty name is a warning.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(name) {
	case "error":
		return SeverityError, nil
	case "warning", "warn", "":
		return SeverityWarning, nil
	case "information", "info":
		return SeverityInformation, nil
	case "hint":
		return SeverityHint, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownSeverity, name)
}

func (s Severity) MarshalText() ([]byte, error) {
	if s < SeverityError || s > SeverityHint {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeverity, int(s))
	}

	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}
