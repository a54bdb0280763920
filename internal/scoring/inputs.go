package scoring

import "strings"

// FundingStage is the startup's latest funding round.
type FundingStage string

const (
	StagePreSeed FundingStage = "pre-seed"
	StageSeed    FundingStage = "seed"
	StageSeriesA FundingStage = "series-a"
	StageSeriesB FundingStage = "series-b"
	StageSeriesC FundingStage = "series-c"
)

// ProductStage is how far the product has progressed.
type ProductStage string

const (
	ProductIdea      ProductStage = "idea"
	ProductPrototype ProductStage = "prototype"
	ProductMVP       ProductStage = "mvp"
	ProductLaunched  ProductStage = "launched"
)

// FundingStages lists the known stages from lowest to highest.
var FundingStages = []FundingStage{StagePreSeed, StageSeed, StageSeriesA, StageSeriesB, StageSeriesC}

// ProductStages lists the known stages from lowest to highest.
var ProductStages = []ProductStage{ProductIdea, ProductPrototype, ProductMVP, ProductLaunched}

// Inputs are the attributes of one evaluated startup.
type Inputs struct {
	FoundersExperience   int          `json:"foundersExperience"`
	FoundersStartups     int          `json:"foundersStartups"`
	FoundersExits        int          `json:"foundersExits"`
	TeamSize             int          `json:"teamSize"`
	MarketSize           float64      `json:"marketSize"`
	FundingStage         FundingStage `json:"fundingStage"`
	MonthlyRevenue       float64      `json:"monthlyRevenue"`
	ProductStage         ProductStage `json:"productStage"`
	PitchQuality         int          `json:"pitchQuality"`
	CompetitiveAdvantage string       `json:"competitiveAdvantage,omitempty"`
}

// Normalize returns the canonical form of s ("Series A", "series_a" -> "series-a").
func (s FundingStage) Normalize() FundingStage {
	return FundingStage(canonical(string(s)))
}

// Known reports whether s names a defined stage.
func (s FundingStage) Known() bool {
	n := s.Normalize()
	for _, st := range FundingStages {
		if n == st {
			return true
		}
	}
	return false
}

// Normalize returns the canonical form of s ("MVP" -> "mvp").
func (s ProductStage) Normalize() ProductStage {
	return ProductStage(canonical(string(s)))
}

// Known reports whether s names a defined stage.
func (s ProductStage) Known() bool {
	n := s.Normalize()
	for _, st := range ProductStages {
		if n == st {
			return true
		}
	}
	return false
}

func canonical(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.NewReplacer("_", "-", " ", "-").Replace(v)
	// "preseed" and "seriesa" forms show up in imported records
	switch v {
	case "preseed":
		return string(StagePreSeed)
	case "seriesa":
		return string(StageSeriesA)
	case "seriesb":
		return string(StageSeriesB)
	case "seriesc":
		return string(StageSeriesC)
	}
	return v
}
