package chat

import (
	"errors"
	"fmt"
)

// ErrNoActiveConversation is the only handler failure surfaced to the client
// as an error event. Everything else stays server-side.
var ErrNoActiveConversation = errors.New("no active chat with this user")

// errSilentDrop marks intents dropped on purpose (blocked sender). The
// dispatch loop counts them but emits nothing.
var errSilentDrop = errors.New("silently dropped")

// StorageError wraps a failed persistence call. The operation that hit it is
// aborted with no partial emission and no retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
