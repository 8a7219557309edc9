// Package bolt is the embedded bbolt persistence backend. Documents live
// as JSON values in one bucket of a single database file.
package bolt
