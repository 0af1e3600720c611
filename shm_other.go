//go:build !unix

package wirebit

import "fmt"

// Non-unix platforms have no /dev/shm-style named shared memory in this
// module; CreateShm/AttachShm report ErrIOError rather than silently
// falling back to an in-process ring, since callers rely on the name
// being visible to a separate process.

func CreateShm(name string, capacity uint64) (*Ring, error) {
	return nil, fmt.Errorf("%w: shared memory rings are not supported on this platform", ErrIOError)
}

func AttachShm(name string, capacity uint64) (*Ring, error) {
	return nil, fmt.Errorf("%w: shared memory rings are not supported on this platform", ErrIOError)
}

func UnlinkShm(name string) error {
	return fmt.Errorf("%w: shared memory rings are not supported on this platform", ErrIOError)
}

// Close is a no-op: a Ring on this platform is always heap-backed.
func (r *Ring) Close() error {
	return nil
}
