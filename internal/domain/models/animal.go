package models

// PhysioState enumerates the supported animal life stages.
type PhysioState string

const (
	StateLactating PhysioState = "Lactating Cow"
	StateDry       PhysioState = "Dry Cow"
	StateHeifer    PhysioState = "Heifer"
	StateBabyCalf  PhysioState = "Baby Calf/Heifer"
)

// BreedClass groups breeds by the intake/energy curves they follow.
type BreedClass string

const (
	BreedHolstein   BreedClass = "Holstein"
	BreedCrossbred  BreedClass = "Crossbred"
	BreedIndigenous BreedClass = "Indigenous"
)

// GestationLengthDays is the assumed gestation length for clamping.
const GestationLengthDays = 280

// AnimalProfile describes the subject animal and its production targets. It is
// built once per evaluation request and never mutated during the call.
type AnimalProfile struct {
	State      PhysioState `json:"physiological_state"`
	Breed      BreedClass  `json:"breed_class"`
	BodyWeight float64     `json:"body_weight_kg"`
	WeightGain float64     `json:"target_gain_kg_day"`
	BCS        float64     `json:"body_condition_score"`
	DaysInMilk float64     `json:"days_in_milk"`

	MilkVolume  float64 `json:"milk_volume_l_day"`
	MilkFat     float64 `json:"milk_fat_pct"`
	MilkProtein float64 `json:"milk_protein_pct"`
	MilkLactose float64 `json:"milk_lactose_pct"`

	Parity       int     `json:"parity"`
	GestationDay float64 `json:"gestation_day"`

	TemperatureC    float64 `json:"ambient_temperature_c"`
	Grazing         bool    `json:"grazing"`
	TravelKm        float64 `json:"travel_distance_km"`
	TopographyClass int     `json:"topography_class"`
}

// AnimalRequest is the inbound JSON shape. Pointer fields distinguish an
// omitted value (gets the documented default) from an explicit zero.
type AnimalRequest struct {
	State      string   `json:"physiological_state"`
	Breed      string   `json:"breed_class"`
	BodyWeight *float64 `json:"body_weight_kg"`
	WeightGain *float64 `json:"target_gain_kg_day"`
	BCS        *float64 `json:"body_condition_score"`
	DaysInMilk *float64 `json:"days_in_milk"`

	MilkVolume  *float64 `json:"milk_volume_l_day"`
	MilkFat     *float64 `json:"milk_fat_pct"`
	MilkProtein *float64 `json:"milk_protein_pct"`
	MilkLactose *float64 `json:"milk_lactose_pct"`

	Parity       *int     `json:"parity"`
	GestationDay *float64 `json:"gestation_day"`

	TemperatureC    *float64 `json:"ambient_temperature_c"`
	Grazing         bool     `json:"grazing"`
	TravelKm        *float64 `json:"travel_distance_km"`
	TopographyClass *int     `json:"topography_class"`
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Profile materializes an AnimalProfile from the request, substituting the
// per-field defaults and applying the physiological clamps.
func (r AnimalRequest) Profile() AnimalProfile {
	p := AnimalProfile{
		State:      PhysioState(r.State),
		Breed:      BreedClass(r.Breed),
		BodyWeight: orDefault(r.BodyWeight, 600),
		WeightGain: orDefault(r.WeightGain, 0),
		BCS:        orDefault(r.BCS, 3.0),
		DaysInMilk: orDefault(r.DaysInMilk, 100),

		MilkVolume:  orDefault(r.MilkVolume, 25),
		MilkFat:     orDefault(r.MilkFat, 3.8),
		MilkProtein: orDefault(r.MilkProtein, 3.2),
		MilkLactose: orDefault(r.MilkLactose, 4.85),

		GestationDay: orDefault(r.GestationDay, 0),
		TemperatureC: orDefault(r.TemperatureC, 20),
		Grazing:      r.Grazing,
		TravelKm:     orDefault(r.TravelKm, 0),
	}

	if r.State == "" {
		p.State = StateLactating
	}
	if r.Breed == "" {
		p.Breed = BreedHolstein
	}

	parity := 2
	if r.Parity != nil {
		parity = *r.Parity
	}
	p.Parity = clampParity(parity, p.State)

	if r.TopographyClass != nil {
		p.TopographyClass = *r.TopographyClass
	}
	if p.TopographyClass < 0 {
		p.TopographyClass = 0
	}

	p.GestationDay = clampGestationDay(p.GestationDay)

	return p
}

// clampParity restricts parity to {0,1,2}; zero is only meaningful for
// animals that have not calved yet.
func clampParity(parity int, state PhysioState) int {
	if state == StateHeifer || state == StateBabyCalf {
		if parity < 0 {
			return 0
		}
		if parity > 2 {
			return 2
		}
		return parity
	}
	if parity < 1 {
		return 1
	}
	if parity > 2 {
		return 2
	}
	return parity
}

// clampGestationDay zeroes physiologically impossible gestation days and caps
// the rest at term plus a ten day grace window.
func clampGestationDay(day float64) float64 {
	if day < 0 || day > GestationLengthDays+10 {
		return 0
	}
	return day
}

// IntakeCurveDay returns the days-in-milk value used by the lactation intake
// curve, clamped to the [0,100] window regardless of true lactation day.
func (p AnimalProfile) IntakeCurveDay() float64 {
	switch {
	case p.DaysInMilk < 0:
		return 0
	case p.DaysInMilk > 100:
		return 100
	default:
		return p.DaysInMilk
	}
}

// Validate rejects profiles the calculators cannot interpret.
func (p AnimalProfile) Validate() error {
	switch p.State {
	case StateLactating, StateDry, StateHeifer, StateBabyCalf:
	default:
		return &ValidationError{Field: "physiological_state", Reason: "unknown state " + string(p.State)}
	}
	if p.BodyWeight <= 0 {
		return &ValidationError{Field: "body_weight_kg", Reason: "must be positive"}
	}
	if p.MilkVolume < 0 {
		return &ValidationError{Field: "milk_volume_l_day", Reason: "must not be negative"}
	}
	return nil
}
