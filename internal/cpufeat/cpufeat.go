// Package cpufeat reports CPU feature availability used to pick a faster
// pure-Go code path in codecs that can benefit from wider loads (currently
// codec.BitpackCodec). Detection is advisory only: every code path it guards
// produces byte-identical output, it only changes how fast that output is
// produced.
package cpufeat

import "sync"

var (
	detectOnce sync.Once
	hasAVX2    bool
	hasNEON    bool
)

// detect populates the feature flags once, lazily.
func detect() {
	detectOnce.Do(detectImpl)
}

// HasWideUnpack reports whether the current CPU has a feature set (AVX2 on
// amd64, NEON on arm64) that makes a uint64-at-a-time unpack loop worthwhile
// instead of the bit-at-a-time fallback.
func HasWideUnpack() bool {
	detect()
	return hasAVX2 || hasNEON
}
