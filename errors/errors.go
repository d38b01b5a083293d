package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which subsystem detected the error
type Phase string

const (
	PhaseLayout   Phase = "layout"   // type layout computation
	PhaseArena    Phase = "arena"    // scoped arena allocation
	PhaseBuffer   Phase = "buffer"   // FFI argument buffer
	PhaseDispatch Phase = "dispatch" // call dispatch
	PhasePointer  Phase = "pointer"  // typed pointer access
	PhaseNative   Phase = "native"   // native call primitive
)

// Kind categorizes the error
type Kind string

const (
	KindUnresolvedType     Kind = "unresolved_type"
	KindCyclicType         Kind = "cyclic_type"
	KindInvalidAlignment   Kind = "invalid_alignment"
	KindOutOfSpace         Kind = "out_of_space"
	KindDoubleOpen         Kind = "double_open"
	KindAlreadyRegistered  Kind = "already_registered"
	KindBufferOverflow     Kind = "buffer_overflow"
	KindSignatureMismatch  Kind = "signature_mismatch"
	KindUnknownPointerKind Kind = "unknown_pointer_kind"
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
)

// Error is the structured error type used throughout the module.
// Every error is raised synchronously at the operation that detects it;
// none represent transient conditions, so there is no retry semantics.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is a structured error of the given kind,
// regardless of phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors, one per taxonomy member

// UnresolvedType reports a type whose layout cannot be computed.
func UnresolvedType(path []string, typeName string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindUnresolvedType,
		Path:   path,
		Detail: fmt.Sprintf("type %q has no layout", typeName),
	}
}

// CyclicType reports a by-value cycle in an aggregate's field graph.
func CyclicType(cycle []string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindCyclicType,
		Detail: fmt.Sprintf("by-value cycle: %s", strings.Join(cycle, " -> ")),
	}
}

// InvalidAlignment reports a zero or non-power-of-two alignment.
func InvalidAlignment(phase Phase, align uintptr) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidAlignment,
		Detail: fmt.Sprintf("alignment %d is not a power of two", align),
	}
}

// OutOfArenaSpace reports exhaustion of the arena's backing memory.
func OutOfArenaSpace(size, align uintptr, cause error) *Error {
	return &Error{
		Phase:  PhaseArena,
		Kind:   KindOutOfSpace,
		Detail: fmt.Sprintf("cannot reserve %d bytes (align %d)", size, align),
		Cause:  cause,
	}
}

// DoubleOpen reports allocation against a scope that already closed.
func DoubleOpen() *Error {
	return &Error{
		Phase:  PhaseArena,
		Kind:   KindDoubleOpen,
		Detail: "scope already closed",
	}
}

// AlreadyRegistered reports a duplicate local-reference registration.
func AlreadyRegistered(detail string) *Error {
	return &Error{
		Phase:  PhaseArena,
		Kind:   KindAlreadyRegistered,
		Detail: detail,
	}
}

// BufferOverflow reports a write that would cross the buffer capacity.
func BufferOverflow(offset, size, capacity uintptr) *Error {
	return &Error{
		Phase:  PhaseBuffer,
		Kind:   KindBufferOverflow,
		Detail: fmt.Sprintf("write of %d bytes at offset %d exceeds capacity %d", size, offset, capacity),
	}
}

// SignatureMismatch reports a committed-argument list that does not match
// the signature's parameter list.
func SignatureMismatch(detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindSignatureMismatch,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// UnknownPointerKind reports an unsupported pointer reinterpretation target.
func UnknownPointerKind(kind string) *Error {
	return &Error{
		Phase:  PhasePointer,
		Kind:   KindUnknownPointerKind,
		Detail: fmt.Sprintf("cannot reinterpret pointer to element kind %s", kind),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf(what, args...),
	}
}
