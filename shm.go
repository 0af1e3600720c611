//go:build unix

package wirebit

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// shmDir is where POSIX-style named shared-memory segments are created.
// Real shm_open implementations back "/name" onto this tmpfs mount; we
// do the same with a plain file plus mmap rather than cgo, which keeps
// the module pure Go while producing the identical memory-sharing
// semantics (MAP_SHARED over a file two processes both open by path).
const shmDir = "/dev/shm"

// CreateShm creates a new named shared-memory byte ring. name must
// begin with "/" per POSIX shm naming (see ShmLink, which uses
// "/<link>_tx" and "/<link>_rx"). The creator initializes the ring's
// cursors to zero; it owns the segment's lifetime and must Unlink it
// after every attached client has detached.
func CreateShm(name string, capacity uint64) (*Ring, error) {
	path, err := shmPath(name)
	if err != nil {
		return nil, err
	}
	size := ringHeaderSize + int(capacity)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: create shm %s: %v", ErrIOError, name, err)
	}
	defer f.Close()
	if err := f.Truncate(int64(size)); err != nil {
		return nil, fmt.Errorf("%w: truncate shm %s: %v", ErrIOError, name, err)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap shm %s: %v", ErrIOError, name, err)
	}
	r, err := newRing(data, capacity, true)
	if err != nil {
		_ = unix.Munmap(data)
		return nil, err
	}
	r.mapped = true
	return r, nil
}

// AttachShm attaches to an existing named shared-memory ring created by
// a peer. It validates that the segment's stored capacity matches and
// then uses the existing cursors rather than resetting them. Returns
// ErrNotFound if the segment does not exist.
func AttachShm(name string, capacity uint64) (*Ring, error) {
	path, err := shmPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: shm %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: open shm %s: %v", ErrIOError, name, err)
	}
	defer f.Close()
	size := ringHeaderSize + int(capacity)
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap shm %s: %v", ErrIOError, name, err)
	}
	r, err := newRing(data, capacity, false)
	if err != nil {
		_ = unix.Munmap(data)
		return nil, err
	}
	r.mapped = true
	return r, nil
}

// UnlinkShm removes the named shared-memory segment. The server calls
// this after destroying its link, once every client has detached;
// calling it while clients still hold mappings is safe on POSIX systems
// (the mapping remains valid until every process unmaps it) but leaves
// no way for new clients to attach.
func UnlinkShm(name string) error {
	path, err := shmPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: unlink shm %s: %v", ErrIOError, name, err)
	}
	return nil
}

// Close unmaps the ring's backing region if it was created via
// CreateShm/AttachShm. It is a no-op for an in-process (heap-backed)
// ring returned by NewByteRing.
func (r *Ring) Close() error {
	if !r.mapped {
		return nil
	}
	if err := unix.Munmap(r.region); err != nil {
		return fmt.Errorf("%w: munmap: %v", ErrIOError, err)
	}
	return nil
}

func shmPath(name string) (string, error) {
	if len(name) == 0 || name[0] != '/' {
		return "", fmt.Errorf("%w: shm name must begin with '/', got %q", ErrInvalidArgument, name)
	}
	return filepath.Join(shmDir, name[1:]), nil
}
