package forecast

import (
	"math"
	"math/rand"
)

// DefaultLookback is the sequence model's input window in days.
const DefaultLookback = 7

// Training hyperparameters. The network is deliberately tiny: it is
// refit from scratch on every call over at most a few hundred samples,
// so fit cost stays bounded and no weights persist between requests.
const (
	seqHiddenUnits  = 8
	seqEpochs       = 120
	seqLearningRate = 0.05
	seqInitSeed     = 1
)

// SequenceForecaster predicts daily spending with a small recurrent
// regressor over fixed-length windows of recent days. It is an optional
// capability: callers must check Available before requesting it.
type SequenceForecaster struct {
	lookback  int
	epsilon   float64
	available bool
}

// NewSequenceForecaster builds a forecaster with the given lookback
// window (<=0 selects DefaultLookback). The available flag reflects the
// runtime capability; a disabled forecaster rejects every Predict call
// with ErrModelUnavailable instead of silently falling back.
func NewSequenceForecaster(lookback int, available bool) *SequenceForecaster {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &SequenceForecaster{
		lookback:  lookback,
		epsilon:   DefaultStableEpsilon,
		available: available,
	}
}

// Available reports whether the sequence capability is enabled in this
// runtime.
func (f *SequenceForecaster) Available() bool {
	return f.available
}

// Lookback returns the input window length in days.
func (f *SequenceForecaster) Lookback() int {
	return f.lookback
}

// Predict trains the network on overlapping lookback windows of the
// series and rolls it forward daysAhead steps autoregressively: each
// predicted day joins the input window for the next step. Accuracy is
// 1 minus the normalized training reconstruction error, clamped into
// [0,1]. No confidence bounds are produced by this method.
func (f *SequenceForecaster) Predict(series DailySeries, daysAhead int) (*Result, error) {
	if !f.available {
		return nil, ErrModelUnavailable
	}
	if err := validateDaysAhead(daysAhead); err != nil {
		return nil, err
	}
	n := series.Len()
	if n < f.lookback+1 {
		return nil, ErrInsufficientHistory
	}

	lo, hi := minMax(series.Amounts)
	points := make([]Point, daysAhead)
	var accuracy float64

	if hi == lo {
		// Zero-variance history: the only defensible forecast is the
		// constant itself. Accuracy is defined as 0, trend as stable.
		for i := range points {
			points[i] = Point{Date: series.Day(n + i), Predicted: lo}
		}
	} else {
		norm := normalizeMinMax(series.Amounts, lo, hi)
		net := newSequenceNet(seqHiddenUnits, rand.New(rand.NewSource(seqInitSeed)))
		net.train(norm, f.lookback)
		accuracy = net.trainingAccuracy(norm, f.lookback)

		window := append([]float64(nil), norm[n-f.lookback:]...)
		for i := range points {
			y := net.forward(window)
			// Keep the feedback signal inside the training range so the
			// rollout cannot drift into regions the net never saw.
			window = append(window[1:], clamp01(y))
			predicted := y*(hi-lo) + lo
			if predicted < 0 {
				predicted = 0
			}
			points[i] = Point{Date: series.Day(n + i), Predicted: predicted}
		}
	}

	delta := points[len(points)-1].Predicted - points[0].Predicted
	result := finalize(points, series, delta, f.epsilon)
	result.Accuracy = &accuracy
	return result, nil
}

// sequenceNet is a one-layer Elman network with scalar input and
// output: h_t = tanh(wx*x_t + Wh·h_{t-1} + bh), y = wo·h_L + bo.
type sequenceNet struct {
	hidden int
	wx     []float64
	wh     [][]float64
	bh     []float64
	wo     []float64
	bo     float64
}

func newSequenceNet(hidden int, rng *rand.Rand) *sequenceNet {
	net := &sequenceNet{
		hidden: hidden,
		wx:     make([]float64, hidden),
		wh:     make([][]float64, hidden),
		bh:     make([]float64, hidden),
		wo:     make([]float64, hidden),
	}
	const scale = 0.2
	for i := 0; i < hidden; i++ {
		net.wx[i] = (rng.Float64()*2 - 1) * scale
		net.wo[i] = (rng.Float64()*2 - 1) * scale
		net.wh[i] = make([]float64, hidden)
		for j := 0; j < hidden; j++ {
			net.wh[i][j] = (rng.Float64()*2 - 1) * scale
		}
	}
	return net
}

// forward runs the window through the recurrence and returns the
// predicted next value.
func (net *sequenceNet) forward(window []float64) float64 {
	h := make([]float64, net.hidden)
	for _, x := range window {
		h = net.step(x, h)
	}
	return net.output(h)
}

func (net *sequenceNet) step(x float64, prev []float64) []float64 {
	h := make([]float64, net.hidden)
	for i := 0; i < net.hidden; i++ {
		sum := net.wx[i]*x + net.bh[i]
		for j := 0; j < net.hidden; j++ {
			sum += net.wh[i][j] * prev[j]
		}
		h[i] = math.Tanh(sum)
	}
	return h
}

func (net *sequenceNet) output(h []float64) float64 {
	y := net.bo
	for i := 0; i < net.hidden; i++ {
		y += net.wo[i] * h[i]
	}
	return y
}

// train runs per-sample gradient descent with full backpropagation
// through the lookback window.
func (net *sequenceNet) train(norm []float64, lookback int) {
	samples := len(norm) - lookback
	for epoch := 0; epoch < seqEpochs; epoch++ {
		for s := 0; s < samples; s++ {
			window := norm[s : s+lookback]
			target := norm[s+lookback]
			net.backprop(window, target)
		}
	}
}

func (net *sequenceNet) backprop(window []float64, target float64) {
	steps := len(window)

	// Forward pass, keeping every hidden state for the backward sweep.
	states := make([][]float64, steps+1)
	states[0] = make([]float64, net.hidden)
	for t, x := range window {
		states[t+1] = net.step(x, states[t])
	}
	y := net.output(states[steps])
	errOut := y - target

	gradWx := make([]float64, net.hidden)
	gradBh := make([]float64, net.hidden)
	gradWh := make([][]float64, net.hidden)
	for i := range gradWh {
		gradWh[i] = make([]float64, net.hidden)
	}

	// Output layer.
	dh := make([]float64, net.hidden)
	for i := 0; i < net.hidden; i++ {
		dh[i] = errOut * net.wo[i]
		net.wo[i] -= seqLearningRate * errOut * states[steps][i]
	}
	net.bo -= seqLearningRate * errOut

	// Backward through time.
	for t := steps; t >= 1; t-- {
		da := make([]float64, net.hidden)
		for i := 0; i < net.hidden; i++ {
			hi := states[t][i]
			da[i] = dh[i] * (1 - hi*hi)
			gradWx[i] += da[i] * window[t-1]
			gradBh[i] += da[i]
			for j := 0; j < net.hidden; j++ {
				gradWh[i][j] += da[i] * states[t-1][j]
			}
		}
		prev := make([]float64, net.hidden)
		for j := 0; j < net.hidden; j++ {
			for i := 0; i < net.hidden; i++ {
				prev[j] += net.wh[i][j] * da[i]
			}
		}
		dh = prev
	}

	for i := 0; i < net.hidden; i++ {
		net.wx[i] -= seqLearningRate * clampGrad(gradWx[i])
		net.bh[i] -= seqLearningRate * clampGrad(gradBh[i])
		for j := 0; j < net.hidden; j++ {
			net.wh[i][j] -= seqLearningRate * clampGrad(gradWh[i][j])
		}
	}
}

// trainingAccuracy reconstructs every training target and returns
// 1 - MSE/variance, clamped into [0,1]. Zero target variance counts as
// accuracy 0 rather than a division blowup.
func (net *sequenceNet) trainingAccuracy(norm []float64, lookback int) float64 {
	samples := len(norm) - lookback
	targets := norm[lookback:]
	mean := meanOf(targets)

	var mse, variance float64
	for s := 0; s < samples; s++ {
		y := net.forward(norm[s : s+lookback])
		d := y - targets[s]
		mse += d * d
		variance += (targets[s] - mean) * (targets[s] - mean)
	}
	if variance == 0 {
		return 0
	}
	return clamp01(1 - mse/variance)
}

func clampGrad(g float64) float64 {
	const limit = 1.0
	if g > limit {
		return limit
	}
	if g < -limit {
		return -limit
	}
	return g
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func normalizeMinMax(values []float64, lo, hi float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}
