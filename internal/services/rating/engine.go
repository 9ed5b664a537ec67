// Package rating scores fundamental data and price statistics into 13 sub-ratings
// and an overall rating. All functions are stateless and perform no I/O.
package rating

import (
	"github.com/ternarybob/stockanalyzer/internal/models"
)

// Rate returns a copy of fd with the price statistics, the 13 sub-ratings and the
// overall rating set. Sentinel price statistics rate 0.
func Rate(fd *models.FundamentalMetrics, pm models.PriceMetrics) *models.FundamentalMetrics {
	out := *fd
	th := ThresholdsFor(fd.StockType)

	var r models.Ratings

	r.ROE = th.ROE.Rate(fd.ROE)
	if th.RateEBIT {
		r.EBIT = th.EBIT.Rate(fd.EBIT)
	}
	r.EquityRatio = th.EquityRatio.Rate(fd.EquityRatio)
	r.Per5Years = ratePER(th.Per5Years, fd.Per5Years)
	r.PerCurrent = ratePER(th.PerCurrent, fd.PerCurrent)
	r.AnalystEstimation = rateAnalystEstimation(th, fd.AnalystEstimation, fd.AnalystEstimationCount)

	out.ReactionToQuarterlyFigures = pm.ReactionToQuarterlyFigures
	if !models.IsReactionSentinel(pm.ReactionToQuarterlyFigures) {
		r.LastQuarterlyFigures = th.Reaction.Rate(pm.ReactionToQuarterlyFigures)
	}

	out.RateProgress6Month = pm.RateProgress6Month
	out.RateProgress1Year = pm.RateProgress1Year
	r.RateProgress6Month = th.RateProgress.Rate(pm.RateProgress6Month)
	r.RateProgress1Year = th.RateProgress.Rate(pm.RateProgress1Year)
	r.RateMomentum = RateMomentum(r.RateProgress6Month, r.RateProgress1Year)

	if th.RateReversal {
		out.Reversal3Month = append([]float64(nil), pm.Reversal3Month...)
		if !models.IsReversalSentinel(pm.Reversal3Month) {
			r.Reversal3Month = RateReversal(pm.Reversal3Month)
		}
	} else {
		out.Reversal3Month = []float64{0, 0, 0}
	}

	out.ProfitGrowth = ProfitGrowth(fd.EpsCurrentYear, fd.EpsNextYear)
	if fd.EpsCurrentYear != 0 {
		r.ProfitGrowth = th.ProfitGrowth.Rate(out.ProfitGrowth)
	}

	r.EarningsRevision = th.EarningsRevision.Rate(fd.EarningsRevision)

	out.Ratings = r
	out.OverallRating = r.Sum()
	return &out
}

// ratePER leaves an undefined PER (no earnings) unrated
func ratePER(t Threshold, per float64) int {
	if per == 0 {
		return 0
	}
	return t.Rate(per)
}

func rateAnalystEstimation(th Thresholds, estimation float64, count int) int {
	if th.LowCoverageMaxCount > 0 && count > 0 && count < th.LowCoverageMaxCount {
		return th.LowCoverageAnalyst.Rate(estimation)
	}
	return th.AnalystEstimation.Rate(estimation)
}

// RateMomentum rewards a 6-month trend that the 1-year trend does not share yet
func RateMomentum(progress6Month, progress1Year int) int {
	switch {
	case progress6Month == 1 && progress1Year <= 0:
		return 1
	case progress6Month == -1 && progress1Year >= 0:
		return -1
	}
	return 0
}

// RateReversal scores the sign of each monthly differential. Three outperforming
// months rate -1, three underperforming months rate +1.
func RateReversal(reversal []float64) int {
	score := 0
	for _, v := range reversal {
		score += sign(v)
	}
	switch score {
	case 3:
		return -1
	case -3:
		return 1
	}
	return 0
}

// ProfitGrowth is the expected EPS growth in percent, 0 without current earnings
func ProfitGrowth(epsCurrentYear, epsNextYear float64) float64 {
	if epsCurrentYear == 0 {
		return 0
	}
	return (epsNextYear - epsCurrentYear) / epsCurrentYear * 100
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
