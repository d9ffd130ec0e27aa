package nutrition

import (
	"math"
	"testing"

	"github.com/mamadbah2/dairyfeed/internal/domain/models"
)

func TestLimitingNutrientEnergyWhenStrictlyLower(t *testing.T) {
	req := models.RequirementResult{
		NELPerLiter: 0.5,
		MilkProtein: 3.2,
		TrgtDMIn:    20,
	}
	sup := models.SupplyResult{
		DMIn: 20,
		NEL:  5,   // 5 / 0.5 = 10 L from energy
		MP:   1.2, // comfortably more than 10 L from protein
	}

	res := PredictMilkSupport(sup, req)

	if math.Abs(res.MilkEnergyAllowed-10) > 1e-9 {
		t.Fatalf("energy-supported milk = %v, want 10", res.MilkEnergyAllowed)
	}
	if res.MilkProteinAllowed <= res.MilkEnergyAllowed {
		t.Fatalf("test setup broken: protein %v should exceed energy %v", res.MilkProteinAllowed, res.MilkEnergyAllowed)
	}
	if res.LimitingNutrient != LimitingEnergy {
		t.Errorf("limiting nutrient = %q, want %q", res.LimitingNutrient, LimitingEnergy)
	}
	if res.MilkAllowed != res.MilkEnergyAllowed {
		t.Errorf("milk allowed = %v, want binding energy figure %v", res.MilkAllowed, res.MilkEnergyAllowed)
	}
}

func TestLimitingNutrientTieResolvesToProtein(t *testing.T) {
	// Both sides clamp to zero: an exact tie.
	req := models.RequirementResult{
		NELPerLiter: 0.7,
		NELMaint:    50,
		MPMaint:     5000,
		MilkProtein: 3.2,
		TrgtDMIn:    20,
	}
	sup := models.SupplyResult{DMIn: 20, NEL: 1, MP: 0.1}

	res := PredictMilkSupport(sup, req)

	if res.MilkEnergyAllowed != 0 || res.MilkProteinAllowed != 0 {
		t.Fatalf("expected both sides clamped to zero, got %v and %v", res.MilkEnergyAllowed, res.MilkProteinAllowed)
	}
	if res.LimitingNutrient != LimitingProtein {
		t.Errorf("tie should resolve to %q, got %q", LimitingProtein, res.LimitingNutrient)
	}
}

func TestMilkSupportZeroGuardOnPerLiterEnergy(t *testing.T) {
	req := models.RequirementResult{NELPerLiter: 0, MilkProtein: 3.2, TrgtDMIn: 20}
	sup := models.SupplyResult{DMIn: 20, NEL: 30, MP: 1}

	res := PredictMilkSupport(sup, req)

	if res.MilkEnergyAllowed != 0 {
		t.Errorf("energy-supported milk should be zero-guarded, got %v", res.MilkEnergyAllowed)
	}
}

func TestDMIAdequacyClassification(t *testing.T) {
	cases := []struct {
		name     string
		supplied float64
		want     string
	}{
		{"exact", 20.0, AdequacyAdequate},
		{"low boundary", 19.0, AdequacyAdequate},
		{"high boundary", 21.0, AdequacyAdequate},
		{"below", 18.0, AdequacyBelow},
		{"above", 22.0, AdequacyAbove},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyDMIAdequacy(tc.supplied, 20.0); got != tc.want {
				t.Errorf("classify(%v/20) = %q, want %q", tc.supplied, got, tc.want)
			}
		})
	}
}

func TestMethaneEstimates(t *testing.T) {
	req := models.RequirementResult{MilkProtein: 3.2, TrgtDMIn: 20}
	sup := models.SupplyResult{DMIn: 20}

	res := PredictMilkSupport(sup, req)

	wantG := 76.0 + 13.5*20
	if res.MethaneGPerDay != wantG {
		t.Errorf("methane g/day = %v, want %v", res.MethaneGPerDay, wantG)
	}
	if got, want := res.MethaneMJPerDay, wantG*0.0555; math.Abs(got-want) > 1e-9 {
		t.Errorf("methane MJ/day = %v, want %v", got, want)
	}
	if got, want := res.MethaneGPerKgDMI, wantG/20; got != want {
		t.Errorf("methane g/kg = %v, want %v", got, want)
	}
	if res.MethaneBand != "Average" {
		t.Errorf("methane band = %q, want Average", res.MethaneBand)
	}
}

func TestMethanePerKgGuardedAtZeroDMI(t *testing.T) {
	res := PredictMilkSupport(models.SupplyResult{DMIn: 0}, models.RequirementResult{MilkProtein: 3.2})

	if res.MethaneGPerKgDMI != 0 {
		t.Errorf("methane per kg should be 0 at zero intake, got %v", res.MethaneGPerKgDMI)
	}
}
