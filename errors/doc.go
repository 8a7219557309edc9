// Package errors provides the structured error type shared by the gateway and
// the conversation store. Every AppError carries a machine-readable code, the
// HTTP status it maps to, and whether a retry can succeed.
package errors
