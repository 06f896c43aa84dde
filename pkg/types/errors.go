package types

import "fmt"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindEndOfStream        ErrKind = iota // read past the end of the byte buffer
	ErrKindInvalidOffset                     // seek target outside [0, fileSize]
	ErrKindCorrupt                           // structural decode failure (bad magic, sizes, indices)
	ErrKindUnsupportedVersion                // crate version below 0.4.0
	ErrKindUnsupportedType                   // ValueRep type code the decoder does not implement
	ErrKindLimitExceeded                     // a configured resource ceiling was exceeded
	ErrKindTypeMismatch                      // typed get against an incompatible stored type
	ErrKindInvalidApiSchema                  // apiSchemas token outside the closed set
	ErrKindInvalidKind                       // unknown `kind` metadata token
	ErrKindInvalidSpecifier                  // specifier not one of def/class/over
	ErrKindInvalidUpAxis                     // upAxis not one of "X", "Y", "Z"
	ErrKindCircularConnection                // attribute connection chain revisits a path
	ErrKindInvalidConnection                 // connection target missing or malformed
	ErrKindNotFound                          // missing prim, property, or path
	ErrKindState                             // invalid operation for current state (e.g. closed)
)

// Error is a typed error with an optional underlying cause. Section and
// Offset locate structural failures inside the crate file; both are zero
// for errors raised above the decode layer.
type Error struct {
	Kind    ErrKind
	Section string // crate section being decoded ("TOKENS", "PATHS", ...)
	Offset  int64  // byte offset at the point of failure
	Msg     string
	Err     error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Section != "" {
		return fmt.Sprintf("[Crate] %s:%d: %s", e.Section, e.Offset, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so errors.Is matches the sentinels below even
// when the error carries section/offset context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels commonly returned by implementations.
var (
	// ErrEndOfStream indicates a read required more bytes than remain.
	ErrEndOfStream = &Error{Kind: ErrKindEndOfStream, Msg: "unexpected end of stream"}
	// ErrInvalidOffset indicates a seek outside the file bounds.
	ErrInvalidOffset = &Error{Kind: ErrKindInvalidOffset, Msg: "seek offset out of range"}
	// ErrCorrupt indicates non-recoverable structural inconsistency.
	ErrCorrupt = &Error{Kind: ErrKindCorrupt, Msg: "corrupt crate structure"}
	// ErrUnsupportedVersion indicates a crate file older than 0.4.0.
	ErrUnsupportedVersion = &Error{Kind: ErrKindUnsupportedVersion, Msg: "unsupported crate version"}
	// ErrUnsupportedType indicates a recognized but unimplemented value type.
	ErrUnsupportedType = &Error{Kind: ErrKindUnsupportedType, Msg: "unsupported value type"}
	// ErrLimitExceeded indicates a configured ceiling was hit.
	ErrLimitExceeded = &Error{Kind: ErrKindLimitExceeded, Msg: "configured limit exceeded"}
	// ErrTypeMismatch indicates the requested decode doesn't match the stored type.
	ErrTypeMismatch = &Error{Kind: ErrKindTypeMismatch, Msg: "value has different type"}
	// ErrInvalidApiSchema indicates an apiSchemas token outside the closed set.
	ErrInvalidApiSchema = &Error{Kind: ErrKindInvalidApiSchema, Msg: "invalid or unsupported API schema"}
	// ErrInvalidKind indicates an unknown `kind` metadata token.
	ErrInvalidKind = &Error{Kind: ErrKindInvalidKind, Msg: "invalid kind metadata"}
	// ErrInvalidSpecifier indicates a specifier outside def/class/over.
	ErrInvalidSpecifier = &Error{Kind: ErrKindInvalidSpecifier, Msg: "invalid specifier"}
	// ErrInvalidUpAxis indicates an upAxis token outside X/Y/Z.
	ErrInvalidUpAxis = &Error{Kind: ErrKindInvalidUpAxis, Msg: "invalid upAxis"}
	// ErrCircularConnection indicates an attribute connection cycle.
	ErrCircularConnection = &Error{Kind: ErrKindCircularConnection, Msg: "circular attribute connection"}
	// ErrInvalidConnection indicates a dangling or malformed connection.
	ErrInvalidConnection = &Error{Kind: ErrKindInvalidConnection, Msg: "invalid attribute connection"}
	// ErrNotFound indicates a missing prim, property, or path.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
)

// CorruptError builds a Corrupt error located at section:offset.
func CorruptError(section string, offset int64, msg string) *Error {
	return &Error{Kind: ErrKindCorrupt, Section: section, Offset: offset, Msg: msg, Err: ErrCorrupt}
}

// LimitError builds a LimitExceeded error located at section:offset.
func LimitError(section string, offset int64, msg string) *Error {
	return &Error{Kind: ErrKindLimitExceeded, Section: section, Offset: offset, Msg: msg, Err: ErrLimitExceeded}
}
