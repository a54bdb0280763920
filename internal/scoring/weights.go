package scoring

import "sort"

// Factor names, shared by weights, sub-scores and the breakdown.
const (
	FactorFounders = "founders"
	FactorTeam     = "team"
	FactorMarket   = "market"
	FactorFunding  = "funding"
	FactorProduct  = "product"
	FactorPitch    = "pitch"
)

// Factors lists every factor in breakdown order.
var Factors = []string{FactorFounders, FactorTeam, FactorMarket, FactorFunding, FactorProduct, FactorPitch}

// Weights are integer percentages per factor. They are independent and need not sum to 100.
type Weights struct {
	Founders int `json:"founders"`
	Team     int `json:"team"`
	Market   int `json:"market"`
	Funding  int `json:"funding"`
	Product  int `json:"product"`
	Pitch    int `json:"pitch"`
}

// DefaultWeights returns the stock weight table.
//
//	founders 25, team 15, market 20, funding 15, product 15, pitch 10
func DefaultWeights() Weights {
	return Weights{
		Founders: 25,
		Team:     15,
		Market:   20,
		Funding:  15,
		Product:  15,
		Pitch:    10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() int {
	return w.Founders + w.Team + w.Market + w.Funding + w.Product + w.Pitch
}

// Balanced reports whether the weights add up to exactly 100.
func (w Weights) Balanced() bool {
	return w.Sum() == 100
}

// Clamp limits every weight to [0,100].
func (w Weights) Clamp() Weights {
	return Weights{
		Founders: clampInt(w.Founders, 0, 100),
		Team:     clampInt(w.Team, 0, 100),
		Market:   clampInt(w.Market, 0, 100),
		Funding:  clampInt(w.Funding, 0, 100),
		Product:  clampInt(w.Product, 0, 100),
		Pitch:    clampInt(w.Pitch, 0, 100),
	}
}

// Get returns the weight for a factor name.
func (w Weights) Get(factor string) (int, bool) {
	switch factor {
	case FactorFounders:
		return w.Founders, true
	case FactorTeam:
		return w.Team, true
	case FactorMarket:
		return w.Market, true
	case FactorFunding:
		return w.Funding, true
	case FactorProduct:
		return w.Product, true
	case FactorPitch:
		return w.Pitch, true
	}
	return 0, false
}

// Merge overlays the factors present in m and returns the names it did not recognise.
func (w Weights) Merge(m map[string]int) (Weights, []string) {
	var unknown []string
	for k, v := range m {
		switch k {
		case FactorFounders:
			w.Founders = v
		case FactorTeam:
			w.Team = v
		case FactorMarket:
			w.Market = v
		case FactorFunding:
			w.Funding = v
		case FactorProduct:
			w.Product = v
		case FactorPitch:
			w.Pitch = v
		default:
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return w, unknown
}

// Map returns the weights keyed by factor name.
func (w Weights) Map() map[string]int {
	return map[string]int{
		FactorFounders: w.Founders,
		FactorTeam:     w.Team,
		FactorMarket:   w.Market,
		FactorFunding:  w.Funding,
		FactorProduct:  w.Product,
		FactorPitch:    w.Pitch,
	}
}
