// Package storage is the object storage layer: a small Storage interface
// with local filesystem and S3 backends, a DocumentStore that persists
// typed JSON documents as objects, and a Blobs helper for attachment
// content.
package storage
