//go:build !amd64 && !arm64

package cpufeat

func detectImpl() {
	// No wide-unpack fast path on unrecognized architectures.
}
