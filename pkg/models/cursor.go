package models

// CursorKind distinguishes the two meanings X collapses into "no cursor":
// the start of pagination and the end of the stream.
type CursorKind int

const (
	// CursorStart fetches the first page.
	CursorStart CursorKind = iota
	// CursorNext fetches the page after Value.
	CursorNext
	// CursorEnd means the timeline is exhausted.
	CursorEnd
)

// Cursor marks a position in a paginated timeline.
type Cursor struct {
	Kind  CursorKind
	Value string
}

// StartCursor returns the beginning-of-pagination cursor.
func StartCursor() Cursor {
	return Cursor{Kind: CursorStart}
}

// NextCursor returns a cursor pointing past the page identified by value.
// An empty value is treated as end-of-stream.
func NextCursor(value string) Cursor {
	if value == "" {
		return EndCursor()
	}
	return Cursor{Kind: CursorNext, Value: value}
}

// EndCursor returns the end-of-stream marker.
func EndCursor() Cursor {
	return Cursor{Kind: CursorEnd}
}

// IsStart reports whether the cursor is the beginning of pagination.
func (c Cursor) IsStart() bool { return c.Kind == CursorStart }

// IsEnd reports whether there are no further pages.
func (c Cursor) IsEnd() bool { return c.Kind == CursorEnd }

// String returns the opaque API value, empty for Start and End.
func (c Cursor) String() string {
	if c.Kind == CursorNext {
		return c.Value
	}
	return ""
}
