//go:build arm64

package cpufeat

func detectImpl() {
	// All arm64 targets Go supports have NEON.
	hasNEON = true
}
