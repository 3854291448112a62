//go:build !debug

package sim

// assertSorted is a no-op unless built with the debug tag; callers are
// expected to pass sorted spikes.
func assertSorted(SpikeVec) {}
