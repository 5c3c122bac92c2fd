//go:build !linux

package perfecthash

// fadviseSequential is a no-op; FADV_SEQUENTIAL is Linux-specific.
func fadviseSequential(fd int, offset, length int64) {}
