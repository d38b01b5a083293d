// Package errors provides structured error types for the native memory
// subsystem.
//
// Every error carries a Phase (which subsystem detected it) and a Kind
// (what contract was violated):
//
//	[layout] cyclic_type: by-value cycle: Node -> Node
//	[arena] double_open: scope already closed
//	[buffer] buffer_overflow: write of 8 bytes at offset 4090 exceeds capacity 4096
//	[dispatch] signature_mismatch: argument 1 kind f64, parameter kind s32
//
// Errors match with the standard errors.Is when Phase and Kind agree; use
// IsKind to match on Kind alone. All errors in the taxonomy are raised
// synchronously by the operation that detects them and indicate either a
// caller contract violation or an irrecoverable environment condition.
// None are retryable.
package errors
