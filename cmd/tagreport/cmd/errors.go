package cmd

import (
	"errors"

	bolterrors "go.etcd.io/bbolt/errors"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt gives up with ErrTimeout when it cannot acquire the file lock within
// the configured deadline.
func isDBLockError(err error) bool {
	return errors.Is(err, bolterrors.ErrTimeout)
}
