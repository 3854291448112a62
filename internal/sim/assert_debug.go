//go:build debug

package sim

func assertSorted(spikes SpikeVec) {
	if err := spikes.Validate(); err != nil {
		panic(err)
	}
}
