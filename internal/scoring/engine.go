// Package scoring computes the investability score of a startup from its
// attributes and a configurable set of factor weights.
//
// Every factor is first rated on a 0-100 scale, then multiplied by its weight
// as a fraction of 100. The weighted contributions are summed without
// renormalization, so weights that do not add up to 100 move the final score
// outside 0-100 and the result carries a warning flag.
package scoring

import "math"

// Band is a coarse label for a final score.
type Band string

const (
	BandWeak      Band = "weak"
	BandModerate  Band = "moderate"
	BandPromising Band = "promising"
	BandStrong    Band = "strong"
)

// Breakdown holds one value per factor.
type Breakdown struct {
	Founders float64 `json:"founders"`
	Team     float64 `json:"team"`
	Market   float64 `json:"market"`
	Funding  float64 `json:"funding"`
	Product  float64 `json:"product"`
	Pitch    float64 `json:"pitch"`
}

// Sum adds the factors in breakdown order.
func (b Breakdown) Sum() float64 {
	return b.Founders + b.Team + b.Market + b.Funding + b.Product + b.Pitch
}

// Result is the outcome of one evaluation.
type Result struct {
	FinalScore     float64   `json:"finalScore"`
	DisplayScore   int       `json:"displayScore"`
	Band           Band      `json:"band"`
	Breakdown      Breakdown `json:"breakdown"`
	SubScores      Breakdown `json:"subScores"`
	Weights        Weights   `json:"weights"`
	WeightsSum     int       `json:"weightsSum"`
	WeightsWarning bool      `json:"weightsWarning"`
}

// CalculateScore rates inputs with weights. It never fails: out-of-range
// numbers are clamped and unknown stages score as the lowest stage.
func CalculateScore(inputs Inputs, weights Weights) Result {
	w := weights.Clamp()

	sub := Breakdown{
		Founders: FoundersScore(inputs.FoundersExperience, inputs.FoundersStartups, inputs.FoundersExits),
		Team:     TeamScore(inputs.TeamSize),
		Market:   MarketScore(inputs.MarketSize),
		Funding:  FundingScore(inputs.FundingStage, inputs.MonthlyRevenue),
		Product:  ProductScore(inputs.ProductStage),
		Pitch:    PitchScore(inputs.PitchQuality),
	}

	contrib := Breakdown{
		Founders: weighted(sub.Founders, w.Founders),
		Team:     weighted(sub.Team, w.Team),
		Market:   weighted(sub.Market, w.Market),
		Funding:  weighted(sub.Funding, w.Funding),
		Product:  weighted(sub.Product, w.Product),
		Pitch:    weighted(sub.Pitch, w.Pitch),
	}

	final := contrib.Sum()
	return Result{
		FinalScore:     final,
		DisplayScore:   int(math.Round(final)),
		Band:           ClassifyBand(final),
		Breakdown:      contrib,
		SubScores:      sub,
		Weights:        w,
		WeightsSum:     w.Sum(),
		WeightsWarning: !w.Balanced(),
	}
}

// ClassifyBand maps a final score to its band.
//
//	< 35 weak, < 55 moderate, < 75 promising, otherwise strong
func ClassifyBand(score float64) Band {
	switch {
	case score >= 75:
		return BandStrong
	case score >= 55:
		return BandPromising
	case score >= 35:
		return BandModerate
	default:
		return BandWeak
	}
}

func weighted(subScore float64, weight int) float64 {
	return subScore * float64(weight) / 100
}

// FoundersScore adds experience, prior-startup and exit points, capped at 100.
//
//	experience years   >=1: 10  >=3: 20  >=5: 30  >=10: 40
//	prior startups       1: 10    2: 20  >=3: 30
//	exits                1: 20  >=2: 30
func FoundersScore(experienceYears, priorStartups, exits int) float64 {
	points := 0

	switch years := clampMin(experienceYears, 0); {
	case years >= 10:
		points += 40
	case years >= 5:
		points += 30
	case years >= 3:
		points += 20
	case years >= 1:
		points += 10
	}

	switch startups := clampMin(priorStartups, 0); {
	case startups >= 3:
		points += 30
	case startups == 2:
		points += 20
	case startups == 1:
		points += 10
	}

	switch e := clampMin(exits, 0); {
	case e >= 2:
		points += 30
	case e == 1:
		points += 20
	}

	return float64(clampInt(points, 0, 100))
}

// TeamScore rates headcount; teams below 1 count as 1.
//
//	1: 0  2-3: 25  4-5: 40  6-10: 60  11-20: 80  >20: 100
func TeamScore(teamSize int) float64 {
	switch size := clampMin(teamSize, 1); {
	case size > 20:
		return 100
	case size >= 11:
		return 80
	case size >= 6:
		return 60
	case size >= 4:
		return 40
	case size >= 2:
		return 25
	default:
		return 0
	}
}

const (
	marketFloor   = 1e6  // scores 0
	marketCeiling = 1e11 // scores 100
)

// MarketScore is linear in log10 of the addressable market between $1M and $100B.
func MarketScore(marketSize float64) float64 {
	size := sanitize(marketSize)
	if size <= marketFloor {
		return 0
	}
	if size >= marketCeiling {
		return 100
	}
	lo, hi := math.Log10(marketFloor), math.Log10(marketCeiling)
	return clampFloat((math.Log10(size)-lo)/(hi-lo)*100, 0, 100)
}

var fundingStageScores = map[FundingStage]float64{
	StagePreSeed: 0,
	StageSeed:    25,
	StageSeriesA: 50,
	StageSeriesB: 75,
	StageSeriesC: 100,
}

const (
	fundingStageShare   = 0.7
	fundingRevenueShare = 0.3
	// monthly revenue at which the revenue component reaches 50
	revenueHalfSaturation = 25000
)

// FundingScore blends the stage value with a saturating revenue score:
//
//	0.7 * stage + 0.3 * 100 * r/(r+25000)
func FundingScore(stage FundingStage, monthlyRevenue float64) float64 {
	stageScore := fundingStageScores[stage.Normalize()] // unknown stages read 0, same as pre-seed
	revenue := sanitize(monthlyRevenue)
	revenueScore := 0.0
	switch {
	case math.IsInf(revenue, 1):
		revenueScore = 100
	case revenue > 0:
		// ratio first: 100*revenue overflows for revenue near MaxFloat64
		revenueScore = 100 * (revenue / (revenue + revenueHalfSaturation))
	}
	return clampFloat(fundingStageShare*stageScore+fundingRevenueShare*revenueScore, 0, 100)
}

var productStageScores = map[ProductStage]float64{
	ProductIdea:      0,
	ProductPrototype: 35,
	ProductMVP:       65,
	ProductLaunched:  100,
}

// ProductScore rates the product stage. Unknown stages score as idea.
func ProductScore(stage ProductStage) float64 {
	return productStageScores[stage.Normalize()]
}

// PitchScore rescales a 1-10 rating to 0-100.
func PitchScore(quality int) float64 {
	q := clampInt(quality, 1, 10)
	return float64(q-1) / 9 * 100
}

// sanitize maps NaN and negatives to 0.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampMin(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}

// clampFloat maps NaN to lo.
func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
