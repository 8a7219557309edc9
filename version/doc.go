// Package version exposes build information stamped via -ldflags.
package version
