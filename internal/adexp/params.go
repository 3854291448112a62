package adexp

// Parameters holds the physical AdExp model parameters in SI units.
type Parameters struct {
	CM      float64 `yaml:"c_m" json:"c_m"`         // membrane capacitance [F]
	GL      float64 `yaml:"g_l" json:"g_l"`         // leak conductance [S]
	EL      float64 `yaml:"e_l" json:"e_l"`         // leak reversal potential [V]
	EE      float64 `yaml:"e_e" json:"e_e"`         // excitatory reversal potential [V]
	EI      float64 `yaml:"e_i" json:"e_i"`         // inhibitory reversal potential [V]
	ETh     float64 `yaml:"e_th" json:"e_th"`       // spike threshold potential [V]
	ESpike  float64 `yaml:"e_spike" json:"e_spike"` // spike detection potential [V]
	EReset  float64 `yaml:"e_reset" json:"e_reset"` // reset potential [V]
	DeltaTh float64 `yaml:"delta_th" json:"delta_th"`
	TauE    float64 `yaml:"tau_e" json:"tau_e"` // excitatory synapse time constant [s]
	TauI    float64 `yaml:"tau_i" json:"tau_i"` // inhibitory synapse time constant [s]
	TauW    float64 `yaml:"tau_w" json:"tau_w"` // adaptation time constant [s]
	A       float64 `yaml:"a" json:"a"`         // subthreshold adaptation [S]
	B       float64 `yaml:"b" json:"b"`         // spike-triggered adaptation [A]
	W       float64 `yaml:"w" json:"w"`         // synaptic weight scale [S]
	TauRef  float64 `yaml:"tau_ref" json:"tau_ref"`
}

// DefaultParameters returns the reference parameter set.
func DefaultParameters() Parameters {
	return Parameters{
		CM:      1e-9,
		GL:      0.05e-6,
		EL:      -70e-3,
		EE:      0.0,
		EI:      -70e-3,
		ETh:     -54e-3,
		ESpike:  20e-3,
		EReset:  -80e-3,
		DeltaTh: 2e-3,
		TauE:    5e-3,
		TauI:    5e-3,
		TauW:    144e-3,
		A:       4e-9,
		B:       0.0805e-9,
		W:       0.03e-6,
		TauRef:  0.0,
	}
}

// GetParams returns the parameters keyed by their yaml names.
func (p Parameters) GetParams() map[string]float64 {
	return map[string]float64{
		"c_m":      p.CM,
		"g_l":      p.GL,
		"e_l":      p.EL,
		"e_e":      p.EE,
		"e_i":      p.EI,
		"e_th":     p.ETh,
		"e_spike":  p.ESpike,
		"e_reset":  p.EReset,
		"delta_th": p.DeltaTh,
		"tau_e":    p.TauE,
		"tau_i":    p.TauI,
		"tau_w":    p.TauW,
		"a":        p.A,
		"b":        p.B,
		"w":        p.W,
		"tau_ref":  p.TauRef,
	}
}

// SetParam sets a parameter by its yaml name and reports whether the name is known.
func (p *Parameters) SetParam(name string, value float64) bool {
	switch name {
	case "c_m":
		p.CM = value
	case "g_l":
		p.GL = value
	case "e_l":
		p.EL = value
	case "e_e":
		p.EE = value
	case "e_i":
		p.EI = value
	case "e_th":
		p.ETh = value
	case "e_spike":
		p.ESpike = value
	case "e_reset":
		p.EReset = value
	case "delta_th":
		p.DeltaTh = value
	case "tau_e":
		p.TauE = value
	case "tau_i":
		p.TauI = value
	case "tau_w":
		p.TauW = value
	case "a":
		p.A = value
	case "b":
		p.B = value
	case "w":
		p.W = value
	case "tau_ref":
		p.TauRef = value
	default:
		return false
	}
	return true
}
