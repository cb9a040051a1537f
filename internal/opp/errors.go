package opp

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by repository and backup operations. None of them
// are fatal: the caller is expected to report them and keep going.
var (
	// ErrStorageRead marks a corrupt or unreadable durable store. The
	// repository recovers by returning an empty record set.
	ErrStorageRead = errors.New("record store unreadable")

	// ErrStorageWrite marks a failed persist. The in-memory working copy
	// is preserved; durable storage may lag behind it.
	ErrStorageWrite = errors.New("record store write failed")

	// ErrValidation marks a rejected mutation (required field missing or
	// out of range). No mutation is applied.
	ErrValidation = errors.New("validation failed")
)

// SchemaMismatchError reports an uploaded dataset that lacks one or more
// declared columns. No partial restore is performed.
type SchemaMismatchError struct {
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("uploaded data is missing required columns: %s", strings.Join(e.Missing, ", "))
}
