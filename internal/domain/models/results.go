package models

import "github.com/mamadbah2/dairyfeed/pkg/numutil"

// RequirementResult is the output of the animal requirement calculator.
// Energy is in Mcal/day, protein in g/day, intake in kg DM/day.
//
// Gestation and growth components are explicitly named but currently valued
// at zero on the evaluation path; they are kept separate from the genuinely
// computed fields instead of being folded away (known modelling gap).
type RequirementResult struct {
	State       PhysioState `json:"physiological_state"`
	Breed       BreedClass  `json:"breed_class"`
	BodyWeight  float64     `json:"body_weight_kg"`
	MilkVolume  float64     `json:"milk_volume_l_day"`
	MilkFat     float64     `json:"milk_fat_pct"`
	MilkProtein float64     `json:"milk_protein_pct"`

	TrgtDMIn float64 `json:"trgt_dt_dmin"`

	// Net energy for lactation, maintenance side. NELMaint includes the
	// grazing activity surcharge.
	NELMaint float64 `json:"an_nel_m"`
	NELGest  float64 `json:"an_nel_gest"`
	NELGain  float64 `json:"an_nel_gain"`
	NELTotal float64 `json:"an_nel"`

	// Energy demanded by the milk production target.
	NELMilk     float64 `json:"trgt_nel_milk"`
	NELPerLiter float64 `json:"nel_per_liter"`

	MEMaint float64 `json:"an_me_m"`
	MEGest  float64 `json:"an_me_gest"`
	MEGain  float64 `json:"an_me_gain"`
	METotal float64 `json:"an_me"`

	MPMaint float64 `json:"an_mp_m"`
	MPGain  float64 `json:"an_mp_gain"`
	MPPreg  float64 `json:"an_mp_preg"`
	MPLact  float64 `json:"an_mp_lact"`
	MPTotal float64 `json:"an_mp_use"`
}

// SupplyResult is the output of the diet supply calculator. Mass supplies are
// kg/day on a dry-matter basis, energy in Mcal/day.
type SupplyResult struct {
	DMIn       float64 `json:"supply_dmin"`
	CP         float64 `json:"supply_cp"`
	MP         float64 `json:"supply_mp"`
	Calcium    float64 `json:"supply_ca"`
	Phosphorus float64 `json:"supply_p"`
	NDF        float64 `json:"supply_ndf"`
	ForageNDF  float64 `json:"supply_forage_ndf"`
	Starch     float64 `json:"supply_starch"`
	EE         float64 `json:"supply_ee"`
	NEL        float64 `json:"supply_nel"`
	ME         float64 `json:"supply_me"`

	// Balance = supply minus requirement. MP balance is in g/day.
	NELBalance float64 `json:"nel_balance"`
	MEBalance  float64 `json:"me_balance"`
	MPBalance  float64 `json:"mp_balance"`
}

// EvaluationResult is the output of the milk-support predictor.
type EvaluationResult struct {
	MilkEnergyAllowed  float64 `json:"milk_energy_allowed_l"`
	MilkProteinAllowed float64 `json:"milk_protein_allowed_l"`
	MilkAllowed        float64 `json:"milk_allowed_l"`
	LimitingNutrient   string  `json:"limiting_nutrient"`
	DMIAdequacy        string  `json:"dmi_adequacy"`

	MethaneGPerDay    float64 `json:"methane_g_day"`
	MethaneMJPerDay   float64 `json:"methane_mj_day"`
	MethaneGPerKgDMI  float64 `json:"methane_g_kg_dmi"`
	MethaneConversion float64 `json:"methane_conversion_ratio"`
	MethaneBand       string  `json:"methane_band"`
}

// EvaluationResponse is the merged, JSON-safe payload returned to API
// callers. Floats are pointers so that non-finite values serialize as null
// rather than breaking encoders.
type EvaluationResponse struct {
	Requirements map[string]*float64 `json:"requirements"`
	Supply       map[string]*float64 `json:"supply"`

	MilkEnergyAllowed  *float64 `json:"milk_energy_allowed_l"`
	MilkProteinAllowed *float64 `json:"milk_protein_allowed_l"`
	MilkAllowed        *float64 `json:"milk_allowed_l"`
	LimitingNutrient   string   `json:"limiting_nutrient"`
	DMIAdequacy        string   `json:"dmi_adequacy"`

	MethaneGPerDay    *float64 `json:"methane_g_day"`
	MethaneMJPerDay   *float64 `json:"methane_mj_day"`
	MethaneGPerKgDMI  *float64 `json:"methane_g_kg_dmi"`
	MethaneConversion *float64 `json:"methane_conversion_ratio"`
	MethaneBand       string   `json:"methane_band"`
}

// BuildResponse merges the three stage results into one serialization-safe
// payload, rounding display values half-up to two decimals.
func BuildResponse(req RequirementResult, sup SupplyResult, eval EvaluationResult) EvaluationResponse {
	sf := numutil.SafeFloat

	return EvaluationResponse{
		Requirements: map[string]*float64{
			"trgt_dt_dmin":  sf(req.TrgtDMIn),
			"an_nel_m":      sf(req.NELMaint),
			"an_nel_gest":   sf(req.NELGest),
			"an_nel_gain":   sf(req.NELGain),
			"an_nel":        sf(req.NELTotal),
			"trgt_nel_milk": sf(req.NELMilk),
			"nel_per_liter": sf(req.NELPerLiter),
			"an_me_m":       sf(req.MEMaint),
			"an_me_gest":    sf(req.MEGest),
			"an_me_gain":    sf(req.MEGain),
			"an_me":         sf(req.METotal),
			"an_mp_m":       sf(req.MPMaint),
			"an_mp_gain":    sf(req.MPGain),
			"an_mp_preg":    sf(req.MPPreg),
			"an_mp_lact":    sf(req.MPLact),
			"an_mp_use":     sf(req.MPTotal),
		},
		Supply: map[string]*float64{
			"supply_dmin":       sf(sup.DMIn),
			"supply_cp":         sf(sup.CP),
			"supply_mp":         sf(sup.MP),
			"supply_ca":         sf(sup.Calcium),
			"supply_p":          sf(sup.Phosphorus),
			"supply_ndf":        sf(sup.NDF),
			"supply_forage_ndf": sf(sup.ForageNDF),
			"supply_starch":     sf(sup.Starch),
			"supply_ee":         sf(sup.EE),
			"supply_nel":        sf(sup.NEL),
			"supply_me":         sf(sup.ME),
			"nel_balance":       sf(sup.NELBalance),
			"me_balance":        sf(sup.MEBalance),
			"mp_balance":        sf(sup.MPBalance),
		},

		MilkEnergyAllowed:  sf(eval.MilkEnergyAllowed),
		MilkProteinAllowed: sf(eval.MilkProteinAllowed),
		MilkAllowed:        sf(eval.MilkAllowed),
		LimitingNutrient:   eval.LimitingNutrient,
		DMIAdequacy:        eval.DMIAdequacy,

		MethaneGPerDay:    sf(eval.MethaneGPerDay),
		MethaneMJPerDay:   sf(eval.MethaneMJPerDay),
		MethaneGPerKgDMI:  sf(eval.MethaneGPerKgDMI),
		MethaneConversion: sf(eval.MethaneConversion),
		MethaneBand:       eval.MethaneBand,
	}
}
