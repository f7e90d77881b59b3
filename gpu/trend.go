package gpu

// Trend classifies the short-term direction of the load.
type Trend int

const (
	TrendFalling Trend = -1
	TrendStable  Trend = 0
	TrendRising  Trend = 1
)

func (t Trend) String() string {
	switch t {
	case TrendRising:
		return "rising"
	case TrendFalling:
		return "falling"
	}
	return "stable"
}

// trendWindow is the history depth; trendNoise is the difference in
// percentage points below which the load counts as stable.
const (
	trendWindow = 5
	trendNoise  = 5.0
)

// TrendAnalyzer keeps a fixed window of recent load samples and compares
// the mean of the two newest against the mean of the rest.
type TrendAnalyzer struct {
	history [trendWindow]int
	n       int
	trend   Trend
}

// Push adds a sample and returns the recomputed trend. Fewer than three
// samples classify as stable.
func (a *TrendAnalyzer) Push(load int) Trend {
	if a.n < trendWindow {
		a.history[a.n] = load
		a.n++
	} else {
		copy(a.history[:], a.history[1:])
		a.history[trendWindow-1] = load
	}

	if a.n < 3 {
		a.trend = TrendStable
		return a.trend
	}

	var recent, older float64
	for i := 0; i < a.n-2; i++ {
		older += float64(a.history[i])
	}
	older /= float64(a.n - 2)
	recent = float64(a.history[a.n-2]+a.history[a.n-1]) / 2

	switch {
	case recent > older+trendNoise:
		a.trend = TrendRising
	case recent < older-trendNoise:
		a.trend = TrendFalling
	default:
		a.trend = TrendStable
	}
	return a.trend
}

// Trend returns the last computed classification.
func (a *TrendAnalyzer) Trend() Trend { return a.trend }

func (a *TrendAnalyzer) clone() *TrendAnalyzer {
	c := *a
	return &c
}
