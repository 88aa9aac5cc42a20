package domain

import "fmt"

// LocationKind tells which fields of a Location are meaningful.
type LocationKind int

const (
	NoLocation LocationKind = iota
	LineLocation
	SpanLocation
)

// Location identifies where in the source artifact a value came from.
// Line numbers are 0-indexed as produced by the preprocessors.
type Location struct {
	Kind  LocationKind
	Start int // line number for LineLocation, first line for SpanLocation
	End   int // last line for SpanLocation
}

// Line returns a single-line location.
func Line(n int) Location {
	return Location{Kind: LineLocation, Start: n}
}

// Span returns a location covering lines start through end.
func Span(start, end int) Location {
	return Location{Kind: SpanLocation, Start: start, End: end}
}

// IsZero reports whether the location is absent.
func (l Location) IsZero() bool {
	return l.Kind == NoLocation
}

// String renders the location 1-indexed, the way editors count lines.
func (l Location) String() string {
	switch l.Kind {
	case LineLocation:
		return fmt.Sprintf("line %d", l.Start+1)
	case SpanLocation:
		if l.Start == l.End {
			return fmt.Sprintf("line %d", l.Start+1)
		}
		return fmt.Sprintf("lines %d-%d", l.Start+1, l.End+1)
	default:
		return "unknown location"
	}
}

// Error is a located diagnostic produced while checking a test.
type Error struct {
	Message  string
	Location Location
}

// Errorf creates an Error without location context.
func Errorf(format string, args ...any) Error {
	return Error{Message: fmt.Sprintf(format, args...)}
}

// WithLocation returns a copy of e attached to loc.
func (e Error) WithLocation(loc Location) Error {
	e.Location = loc
	return e
}

// BriefSummary is the one-line form used in logs.
func (e Error) BriefSummary() string {
	if e.Location.IsZero() {
		return e.Message
	}
	return fmt.Sprintf("Error at %s: %s", e.Location, e.Message)
}

// FullDescription is the human readable form used on the console.
func (e Error) FullDescription() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("Encountered error:\n%s", e.Message)
	}
	return fmt.Sprintf("Encountered error at %s:\n%s", e.Location, e.Message)
}

func (e Error) Error() string {
	return e.BriefSummary()
}
