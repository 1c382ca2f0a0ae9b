package affinet

import "math"

// AdamConfig carries the Adam hyperparameters.
type AdamConfig struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
}

// DefaultAdamConfig returns the standard Adam settings.
func DefaultAdamConfig() AdamConfig {
	return AdamConfig{
		LearningRate: 0.001,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
}

// AdamOptimizer applies the Adam update rule with bias correction to the
// model's parameter slices.  Moment estimates are allocated lazily on the
// first step, keyed by slice position.
type AdamOptimizer struct {
	cfg      AdamConfig
	m, v     [][]float64
	timeStep int
}

// NewAdamOptimizer constructs an optimiser.  Zero-valued hyperparameters
// fall back to the defaults.
func NewAdamOptimizer(cfg AdamConfig) *AdamOptimizer {
	def := DefaultAdamConfig()
	if cfg.LearningRate == 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.Beta1 == 0 {
		cfg.Beta1 = def.Beta1
	}
	if cfg.Beta2 == 0 {
		cfg.Beta2 = def.Beta2
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = def.Epsilon
	}
	return &AdamOptimizer{cfg: cfg}
}

// Step applies one Adam update to the model using its current gradients.
func (opt *AdamOptimizer) Step(model *Model) {
	params, grads := model.parameters()

	if opt.m == nil {
		opt.m = make([][]float64, len(params))
		opt.v = make([][]float64, len(params))
		for i, p := range params {
			opt.m[i] = make([]float64, len(p))
			opt.v[i] = make([]float64, len(p))
		}
	}

	opt.timeStep++
	t := float64(opt.timeStep)
	correction1 := 1.0 - math.Pow(opt.cfg.Beta1, t)
	correction2 := 1.0 - math.Pow(opt.cfg.Beta2, t)

	for i := range params {
		p, g := params[i], grads[i]
		m, v := opt.m[i], opt.v[i]
		for j := range p {
			grad := g[j]
			m[j] = opt.cfg.Beta1*m[j] + (1.0-opt.cfg.Beta1)*grad
			v[j] = opt.cfg.Beta2*v[j] + (1.0-opt.cfg.Beta2)*grad*grad

			mHat := m[j] / correction1
			vHat := v[j] / correction2
			p[j] -= opt.cfg.LearningRate * mHat / (math.Sqrt(vHat) + opt.cfg.Epsilon)
		}
	}
}
