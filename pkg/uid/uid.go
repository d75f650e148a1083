// Package uid generates identifiers for requests and confirmations.
package uid

import "github.com/google/uuid"

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// WithPrefix generates an identifier tagged with prefix, e.g. "del_<uuid>".
func WithPrefix(prefix string) string {
	return prefix + "_" + uuid.New().String()
}
