//go:build !unix

package driver

import "os"

// lockFile only creates the lock file where flock is unavailable; the
// in-process mutex still serializes writers.
func lockFile(path string, _ bool) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	_ = f.Close()
	return func() {}, nil
}
