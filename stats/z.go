package stats

import "gonum.org/v1/gonum/stat/distuv"

// ZVal returns the two-tailed z value for a confidence level given in
// percent, e.g. 1.96 for 95.
func ZVal(confidence float64) float64 {
	return distuv.UnitNormal.Quantile((1 + confidence/100) / 2)
}

// ConfidenceInterval returns the mean of s and the half-width of its
// confidence interval at the given level.
func ConfidenceInterval(s *Statistic, confidence float64) (float64, float64) {
	return s.Mean(), ZVal(confidence) * s.StandardError()
}
