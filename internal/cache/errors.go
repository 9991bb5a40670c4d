package cache

import "fmt"

// ErrNoSuchKey is returned by Del when the key is not present. Unlike GET,
// DEL treats a missing key as a caller error rather than a silent no-op.
type ErrNoSuchKey struct {
	Key string
}

func (e *ErrNoSuchKey) Error() string {
	return fmt.Sprintf("Error in removing entry with key %q", e.Key)
}
