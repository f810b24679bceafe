package storage

import (
	"errors"
	"strings"
)

// Every backend maps its driver faults onto these kinds. Anything else is internal.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnavailable     = errors.New("store unavailable")
)

// validateCollectionName applies the namespace rules MongoDB enforces, so the
// embedded backends reject the same names.
func validateCollectionName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.Join(ErrInvalidArgument, errors.New("collection name is empty"))
	case strings.ContainsAny(name, "$\x00"):
		return errors.Join(ErrInvalidArgument, errors.New("collection name contains '$' or a null character"))
	case strings.HasPrefix(name, "system."):
		return errors.Join(ErrInvalidArgument, errors.New("collection name uses the reserved 'system.' prefix"))
	}
	return nil
}
