package nutrition

import (
	"github.com/mamadbah2/dairyfeed/internal/domain/models"
)

// DMI adequacy classifications.
const (
	AdequacyAdequate = "Adequate"
	AdequacyBelow    = "Below target"
	AdequacyAbove    = "Above target"
)

// Limiting nutrient labels.
const (
	LimitingEnergy  = "Energy"
	LimitingProtein = "Protein"
)

const (
	adequacyTolerance = 0.05

	methaneInterceptG  = 76.0
	methaneSlopeGPerKg = 13.5
	methaneMJPerG      = 0.0555

	// Fixed methane conversion ratio reported on this path.
	mcrPlaceholder = 6.5
	mcrBand        = "Average"
)

// PredictMilkSupport estimates the milk yield the diet can support from the
// energy side and the protein side independently, picks the limiting
// nutrient, classifies intake adequacy and estimates enteric methane.
func PredictMilkSupport(sup models.SupplyResult, req models.RequirementResult) models.EvaluationResult {
	res := models.EvaluationResult{}

	nelAvailable := sup.NEL - (req.NELMaint + req.NELGest + req.NELGain)
	if req.NELPerLiter > 0 {
		res.MilkEnergyAllowed = nelAvailable / req.NELPerLiter
	}
	if res.MilkEnergyAllowed < 0 {
		res.MilkEnergyAllowed = 0
	}

	mpAvailable := sup.MP*1000 - (req.MPMaint + req.MPGain + req.MPPreg)
	mpPerLiter := req.MilkProtein / 100 * 1000 / milkMPEfficiency
	if mpPerLiter > 0 {
		res.MilkProteinAllowed = mpAvailable / mpPerLiter
	}
	if res.MilkProteinAllowed < 0 {
		res.MilkProteinAllowed = 0
	}

	// Strict comparison: a tie resolves to protein.
	if res.MilkEnergyAllowed < res.MilkProteinAllowed {
		res.MilkAllowed = res.MilkEnergyAllowed
		res.LimitingNutrient = LimitingEnergy
	} else {
		res.MilkAllowed = res.MilkProteinAllowed
		res.LimitingNutrient = LimitingProtein
	}

	res.DMIAdequacy = classifyDMIAdequacy(sup.DMIn, req.TrgtDMIn)

	res.MethaneGPerDay = methaneInterceptG + methaneSlopeGPerKg*sup.DMIn
	res.MethaneMJPerDay = res.MethaneGPerDay * methaneMJPerG
	if sup.DMIn > 0 {
		res.MethaneGPerKgDMI = res.MethaneGPerDay / sup.DMIn
	}
	res.MethaneConversion = mcrPlaceholder
	res.MethaneBand = mcrBand

	return res
}

// classifyDMIAdequacy labels supplied intake against the target with an
// inclusive five percent tolerance on both sides.
func classifyDMIAdequacy(supplied, target float64) string {
	if target <= 0 {
		return AdequacyAdequate
	}

	// The band edges are inclusive; the epsilon keeps a ratio landing
	// exactly on 0.95 or 1.05 inside the band despite rounding.
	const edgeEps = 1e-9

	ratio := supplied / target
	switch {
	case ratio < 1-adequacyTolerance-edgeEps:
		return AdequacyBelow
	case ratio > 1+adequacyTolerance+edgeEps:
		return AdequacyAbove
	default:
		return AdequacyAdequate
	}
}
