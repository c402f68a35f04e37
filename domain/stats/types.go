package stats

// ConfidenceInterval is a Wald normal-approximation interval around an
// observed proportion.
// INVARIANTS:
// - 0 <= Lower <= observed <= Upper <= 1 (bounds clipped to [0,1])
// - MarginOfError = ZScore * StandardError
type ConfidenceInterval struct {
	ConfidenceLevel float64 `json:"confidence_level"`
	ZScore          float64 `json:"z_score"`
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	MarginOfError   float64 `json:"margin_of_error"`
	StandardError   float64 `json:"standard_error"`
}

// Contains reports whether the interval covers the value
func (ci ConfidenceInterval) Contains(v float64) bool {
	return v >= ci.Lower && v <= ci.Upper
}

// Descriptive compares the observed win rate against the theoretical one
type Descriptive struct {
	SampleSize         int     `json:"sample_size"`
	Wins               int     `json:"wins"`
	ObservedWinRate    float64 `json:"observed_win_rate"`
	TheoreticalWinRate float64 `json:"theoretical_win_rate"`
	AbsoluteDeviation  float64 `json:"absolute_deviation"`
	RelativeDeviation  float64 `json:"relative_deviation"`
	PercentDeviation   float64 `json:"percent_deviation"`
	Accuracy           float64 `json:"accuracy"`
}

// HypothesisTest is a two-tailed one-proportion z-test of the observed win
// rate against the theoretical probability
type HypothesisTest struct {
	NullValue  float64 `json:"null_value"`
	Observed   float64 `json:"observed"`
	SampleSize int     `json:"sample_size"`
	ZStatistic float64 `json:"z_statistic"`
	PValue     float64 `json:"p_value"`
	Alpha      float64 `json:"alpha"`
	RejectNull bool    `json:"reject_null"`
}

// AdequacyRating classifies a sample size against the n required for a
// target margin of error
type AdequacyRating string

const (
	AdequacyInsufficient AdequacyRating = "insufficient"
	AdequacyFair         AdequacyRating = "fair"
	AdequacyGood         AdequacyRating = "good"
	AdequacyExcellent    AdequacyRating = "excellent"
)

// SampleAdequacy reports how the actual sample size compares to the sizes
// required for 5% and 1% margins at 95% confidence
type SampleAdequacy struct {
	ActualN            int            `json:"actual_n"`
	RequiredForMargin5 int            `json:"required_for_margin_5"`
	RequiredForMargin1 int            `json:"required_for_margin_1"`
	Rating             AdequacyRating `json:"rating"`
}

// Milestones records the first game index at which the deviation from the
// theoretical rate fell to each threshold. Zero means never reached.
type Milestones struct {
	Within10Pct int `json:"within_10_pct"`
	Within5Pct  int `json:"within_5_pct"`
	Within1Pct  int `json:"within_1_pct"`
}

// StableRun is the longest contiguous stretch of win-rate points whose
// deviation stayed inside the stability threshold
type StableRun struct {
	Start  int `json:"start"`
	End    int `json:"end"`
	Length int `json:"length"`
}

// DeviationPoint marks a single win-rate sample by game number
type DeviationPoint struct {
	GameNumber int     `json:"game_number"`
	Deviation  float64 `json:"deviation"`
}

// Stability summarizes the trailing window of the deviation series
type Stability struct {
	WindowSize    int     `json:"window_size"`
	MeanDeviation float64 `json:"mean_deviation"`
	MaxDeviation  float64 `json:"max_deviation"`
	Threshold     float64 `json:"threshold"`
	Stable        bool    `json:"stable"`
}

// Convergence diagnoses how the observed win rate approaches the
// theoretical probability over the course of a batch
type Convergence struct {
	DeviationSeries []float64      `json:"deviation_series"`
	ConvergenceRate float64        `json:"convergence_rate"`
	Stability       Stability      `json:"stability"`
	Milestones      Milestones     `json:"milestones"`
	LongestStable   StableRun      `json:"longest_stable"`
	MaxDeviation    DeviationPoint `json:"max_deviation"`
}

// StrategyStats bundles every statistic computed for one strategy batch
type StrategyStats struct {
	Descriptive Descriptive        `json:"descriptive"`
	Interval    ConfidenceInterval `json:"confidence_interval"`
	Hypothesis  HypothesisTest     `json:"hypothesis_test"`
	Adequacy    SampleAdequacy     `json:"sample_adequacy"`
	Convergence Convergence        `json:"convergence"`
}
