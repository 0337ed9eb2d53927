package backtest

import (
	"fmt"
	"math"

	"github.com/charleschow/fairline/internal/core/odds"
	"github.com/charleschow/fairline/internal/core/pricing"
)

// Result scores the grid engine on one league's matches. Briers are
// three-way for 1X2 and two-way for the 2.5 total.
type Result struct {
	League   string
	Matches  int
	AvgGoals float64

	PinnacleBrier float64 // vig-free Pinnacle 1X2
	GridBrier     float64 // grid 1X2 driven by Pinnacle's DNB split

	// Mean signed error of the grid, model minus outcome.
	HomeBias float64
	DrawBias float64
	AwayBias float64

	// Mean |target - model| of P(home | decisive).
	CalibrationGap float64

	Under25Games         int
	GridUnder25Brier     float64
	PinnacleUnder25Brier float64 // over games with Pinnacle totals prices

	Buckets []Bucket
}

// Bucket compares mean predicted probability with observed frequency.
type Bucket struct {
	Label      string
	Count      int
	MeanPred   float64
	ActualFreq float64
}

type bucketAccum struct {
	sumPred float64
	count   int
	wins    int
}

// Evaluate prices every match from its closing Pinnacle prices and scores
// the grid against the results. The league's scoring level is the sample
// mean of full-time goals.
func Evaluate(league string, matches []Match, p pricing.Params) Result {
	r := Result{League: league, Matches: len(matches)}
	if len(matches) == 0 {
		return r
	}

	var goals int
	for _, m := range matches {
		goals += m.TotalGoals()
	}
	r.AvgGoals = float64(goals) / float64(len(matches))

	var (
		pinnBrierSum, gridBrierSum  float64
		homeErr, drawErr, awayErr   float64
		gapSum                      float64
		underBrierSum, pinnUnderSum float64
		pinnUnderGames              int
	)

	homeBuckets := make([]bucketAccum, 10)
	drawBuckets := make([]bucketAccum, 10)
	awayBuckets := make([]bucketAccum, 10)

	for _, m := range matches {
		pregH, pregD, pregA := odds.RemoveVig3(m.PinnacleHome, m.PinnacleDraw, m.PinnacleAway)
		dnbH, dnbA := odds.DrawNoBet(pregH, pregA)
		b := pricing.PoissonMarkets(odds.ProbabilityToOdds(dnbH), odds.ProbabilityToOdds(dnbA), r.AvgGoals, p)

		var actH, actD, actA float64
		switch m.Result {
		case "H":
			actH = 1
		case "D":
			actD = 1
		case "A":
			actA = 1
		}

		pinnBrierSum += sq(pregH-actH) + sq(pregD-actD) + sq(pregA-actA)

		gh, gd, ga := b.Home.Probability, b.Draw.Probability, b.Away.Probability
		gridBrierSum += sq(gh-actH) + sq(gd-actD) + sq(ga-actA)
		homeErr += gh - actH
		drawErr += gd - actD
		awayErr += ga - actA
		gapSum += math.Abs(b.PiHomeTarget - b.PiHomeModel)

		addToBucket(homeBuckets, gh, actH)
		addToBucket(drawBuckets, gd, actD)
		addToBucket(awayBuckets, ga, actA)

		var actUnder float64
		if m.TotalGoals() < 3 {
			actUnder = 1
		}
		r.Under25Games++
		underBrierSum += 2 * sq(b.Under25.Probability-actUnder)

		if pOver, pUnder := odds.RemoveVig2(m.PinnacleOver25, m.PinnacleUnder25); pOver+pUnder > 0 {
			pinnUnderGames++
			pinnUnderSum += 2 * sq(pUnder-actUnder)
		}
	}

	n := float64(len(matches))
	r.PinnacleBrier = pinnBrierSum / n
	r.GridBrier = gridBrierSum / n
	r.HomeBias = homeErr / n
	r.DrawBias = drawErr / n
	r.AwayBias = awayErr / n
	r.CalibrationGap = gapSum / n
	r.GridUnder25Brier = underBrierSum / float64(r.Under25Games)
	if pinnUnderGames > 0 {
		r.PinnacleUnder25Brier = pinnUnderSum / float64(pinnUnderGames)
	}

	for i := 0; i < 10; i++ {
		label := fmt.Sprintf("%d-%d%%", i*10, (i+1)*10)
		for _, buckets := range []struct {
			name string
			b    []bucketAccum
		}{
			{"home", homeBuckets},
			{"draw", drawBuckets},
			{"away", awayBuckets},
		} {
			b := buckets.b[i]
			if b.count == 0 {
				continue
			}
			r.Buckets = append(r.Buckets, Bucket{
				Label:      fmt.Sprintf("%s %s", buckets.name, label),
				Count:      b.count,
				MeanPred:   b.sumPred / float64(b.count),
				ActualFreq: float64(b.wins) / float64(b.count),
			})
		}
	}

	return r
}

func addToBucket(buckets []bucketAccum, pred, actual float64) {
	idx := int(pred * 10)
	if idx >= 10 {
		idx = 9
	}
	if idx < 0 {
		idx = 0
	}
	buckets[idx].sumPred += pred
	buckets[idx].count++
	if actual > 0.5 {
		buckets[idx].wins++
	}
}

func sq(x float64) float64 { return x * x }
