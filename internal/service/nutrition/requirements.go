package nutrition

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfeed/internal/domain/models"
)

// Energy is carried in Mcal/day, protein in g/day, intake in kg DM/day.
const (
	thermoneutralLowC  = 5.0
	thermoneutralHighC = 20.0
	heatPenaltyPerC    = 0.005922
	coldPenaltyPerC    = 0.004644

	dryBaseIntakeFrac = 0.01979
	closeUpWindowDays = 21.0

	nelMaintCoeff = 0.08 // Mcal NEL per kg metabolic weight, lactating
	meMaintCoeff  = 0.15 // Mcal ME per kg metabolic weight, non-lactating

	meToNEHeifer = 0.63
	meToNEOther  = 0.66

	mpMaintCoeff     = 3.8  // g MP per kg metabolic weight
	milkMPEfficiency = 0.67 // MP to milk true protein

	walkMcalPerKgKm = 0.00045
)

// dmiFormula computes the target dry matter intake for one physiological
// state. Each state owns its own formula so they can be tested in isolation.
type dmiFormula func(models.AnimalProfile) float64

var dmiFormulas = map[models.PhysioState]dmiFormula{
	models.StateLactating: lactatingDMI,
	models.StateDry:       dryCowDMI,
	models.StateHeifer:    heiferDMI,
	models.StateBabyCalf:  babyCalfDMI,
}

// Calculator derives nutrient requirements from an animal profile. It is
// deterministic and performs no I/O.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator wires a requirement calculator instance.
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// Requirements computes intake, energy and protein requirements for the
// profile. It returns either a complete result or an error, never a partial
// result.
func (c *Calculator) Requirements(p models.AnimalProfile) (models.RequirementResult, error) {
	if err := p.Validate(); err != nil {
		return models.RequirementResult{}, err
	}

	formula, ok := dmiFormulas[p.State]
	if !ok {
		return models.RequirementResult{}, fmt.Errorf("requirements: no intake formula for state %q", p.State)
	}

	dmi := formula(p)
	if p.State == models.StateLactating {
		dmi = AdjustDMIForTemperature(dmi, p.TemperatureC)
	}

	mw := math.Pow(p.BodyWeight, 0.75)
	activity := activityEnergy(p)

	res := models.RequirementResult{
		State:       p.State,
		Breed:       p.Breed,
		BodyWeight:  p.BodyWeight,
		MilkVolume:  p.MilkVolume,
		MilkFat:     p.MilkFat,
		MilkProtein: p.MilkProtein,
		TrgtDMIn:    dmi,
	}

	if p.State == models.StateLactating {
		res.NELMaint = nelMaintCoeff*mw + activity
		res.MEMaint = res.NELMaint / meToNEOther
	} else {
		eff := meToNEOther
		if p.State == models.StateHeifer {
			eff = meToNEHeifer
		}
		res.MEMaint = meMaintCoeff*mw + activity/eff
		res.NELMaint = res.MEMaint * eff
	}

	// Gestation and growth terms are gated on a plausible gestation window
	// but remain zero-valued: the sub-models are not implemented on this
	// path. The fields are kept separate so the gap stays visible.
	res.NELGest = gestationEnergy(p)
	res.NELGain = growthEnergy(p)
	res.MEGest = res.NELGest / meToNEOther
	res.MEGain = res.NELGain / meToNEOther

	res.NELTotal = res.NELMaint + res.NELGest + res.NELGain
	res.METotal = res.MEMaint + res.MEGest + res.MEGain

	if p.State == models.StateLactating {
		res.NELPerLiter = MilkEnergyPerLiter(p.MilkFat, p.MilkProtein, p.MilkLactose)
		res.NELMilk = res.NELPerLiter * p.MilkVolume
	}

	res.MPMaint = mpMaintCoeff * mw
	res.MPGain = gestationGrowthProtein(p)
	res.MPPreg = gestationGrowthProtein(p)
	if p.State == models.StateLactating {
		res.MPLact = p.MilkVolume * p.MilkProtein / 100 * 1000 / milkMPEfficiency
	}
	res.MPTotal = res.MPMaint + res.MPGain + res.MPPreg + res.MPLact

	c.logger.Debug("requirements computed",
		zap.String("state", string(p.State)),
		zap.Float64("dmi", res.TrgtDMIn),
		zap.Float64("nel", res.NELTotal),
		zap.Float64("mp", res.MPTotal))

	return res, nil
}

// lactatingDMI is a parity- and condition-adjusted polynomial in lactation
// day. Indigenous breeds follow the NRC fat-corrected-milk formula instead,
// scaled down with a flat offset.
func lactatingDMI(p models.AnimalProfile) float64 {
	day := p.IntakeCurveDay()

	if p.Breed == models.BreedIndigenous {
		fcm := 0.4*p.MilkVolume + 15*p.MilkFat/100*p.MilkVolume
		week := day / 7
		nrc := (0.372*fcm + 0.0968*math.Pow(p.BodyWeight, 0.75)) *
			(1 - math.Exp(-0.192*(week+3.67)))
		return nrc*0.87 + 0.45
	}

	dmi := 0.0170*p.BodyWeight + 0.182*day - 0.00092*day*day
	if p.Parity < 2 {
		dmi *= 0.90
	}
	dmi *= 1 - 0.04*(p.BCS-3.0)
	if dmi < 0 {
		return 0
	}
	return dmi
}

// dryCowDMI is a flat fraction of body weight with an exponential close-up
// depression. The depression is forced to zero when calving is more than 21
// days away.
func dryCowDMI(p models.AnimalProfile) float64 {
	dmi := dryBaseIntakeFrac * p.BodyWeight

	if p.GestationDay > 0 {
		daysToCalving := models.GestationLengthDays - p.GestationDay
		if daysToCalving >= 0 && daysToCalving <= closeUpWindowDays {
			dmi -= 0.32 * math.Exp(0.09*(closeUpWindowDays-daysToCalving))
		}
	}

	if dmi < 0 {
		return 0
	}
	return dmi
}

// heiferDMI is a saturating exponential in body weight; Holsteins sit on a
// higher asymptote than the other breed classes.
func heiferDMI(p models.AnimalProfile) float64 {
	if p.Breed == models.BreedHolstein {
		return 15.36 * (1 - math.Exp(-0.0022*p.BodyWeight))
	}
	return 12.91 * (1 - math.Exp(-0.00295*p.BodyWeight))
}

func babyCalfDMI(p models.AnimalProfile) float64 {
	return 0.10 * p.BodyWeight
}

// AdjustDMIForTemperature applies the asymmetric environmental penalty:
// intake drops 0.5922 %/degC above 20 degC and 0.4644 %/degC below 5 degC,
// and is unchanged inside the thermoneutral band.
func AdjustDMIForTemperature(dmi, tempC float64) float64 {
	var factor float64
	switch {
	case tempC > thermoneutralHighC:
		factor = 1 - heatPenaltyPerC*(tempC-thermoneutralHighC)
	case tempC < thermoneutralLowC:
		factor = 1 - coldPenaltyPerC*(thermoneutralLowC-tempC)
	default:
		return dmi
	}

	if factor < 0 {
		factor = 0
	}
	return dmi * factor
}

// MilkEnergyPerLiter converts milk composition into Mcal NEL per liter.
func MilkEnergyPerLiter(fatPct, proteinPct, lactosePct float64) float64 {
	return 0.0929*fatPct + 0.0585*proteinPct + 0.0395*lactosePct
}

// activityEnergy is the grazing surcharge: a travel-distance term plus a
// topography term expressed as extra meters walked.
func activityEnergy(p models.AnimalProfile) float64 {
	if !p.Grazing {
		return 0
	}

	totalKm := p.TravelKm + topographyMeters(p.TopographyClass)/1000
	return walkMcalPerKgKm * p.BodyWeight * totalKm
}

// topographyMeters maps the topography class to a fixed meters-equivalent.
func topographyMeters(class int) float64 {
	switch {
	case class <= 0:
		return 0
	case class == 1:
		return 50
	case class == 2:
		return 200
	default:
		return 500
	}
}

// gestationEnergy is only non-trivial inside the [1, gestation length]
// window; the sub-model itself is not implemented on this path, so the
// in-window value is still zero.
func gestationEnergy(p models.AnimalProfile) float64 {
	if p.GestationDay < 1 || p.GestationDay > models.GestationLengthDays {
		return 0
	}
	return 0 // sub-model not yet implemented
}

// growthEnergy is not yet modeled on the evaluation path.
func growthEnergy(p models.AnimalProfile) float64 {
	return 0
}

// gestationGrowthProtein covers the growth and pregnancy MP placeholders,
// both not yet modeled on the evaluation path.
func gestationGrowthProtein(p models.AnimalProfile) float64 {
	return 0
}
