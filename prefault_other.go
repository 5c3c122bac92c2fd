//go:build !linux

package perfecthash

// prefaultRegion is a no-op outside Linux.
func prefaultRegion(data []byte) {}
