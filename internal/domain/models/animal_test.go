package models

import "testing"

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }

func TestProfileDefaults(t *testing.T) {
	p := AnimalRequest{}.Profile()

	if p.State != StateLactating {
		t.Errorf("default state = %v", p.State)
	}
	if p.BodyWeight != 600 {
		t.Errorf("default body weight = %v, want 600", p.BodyWeight)
	}
	if p.MilkVolume != 25 {
		t.Errorf("default milk volume = %v, want 25", p.MilkVolume)
	}
	if p.MilkFat != 3.8 || p.MilkProtein != 3.2 || p.MilkLactose != 4.85 {
		t.Errorf("default milk composition = %v/%v/%v", p.MilkFat, p.MilkProtein, p.MilkLactose)
	}
	if p.Parity != 2 {
		t.Errorf("default parity = %v, want 2", p.Parity)
	}
	if p.TemperatureC != 20 {
		t.Errorf("default temperature = %v, want 20", p.TemperatureC)
	}
}

func TestParityClamping(t *testing.T) {
	cases := []struct {
		state  string
		parity int
		want   int
	}{
		{string(StateLactating), 0, 1},
		{string(StateLactating), -3, 1},
		{string(StateLactating), 5, 2},
		{string(StateLactating), 1, 1},
		{string(StateHeifer), 0, 0},
		{string(StateHeifer), -1, 0},
		{string(StateHeifer), 4, 2},
	}

	for _, tc := range cases {
		p := AnimalRequest{State: tc.state, Parity: i(tc.parity)}.Profile()
		if p.Parity != tc.want {
			t.Errorf("clamp parity %d for %s = %d, want %d", tc.parity, tc.state, p.Parity, tc.want)
		}
	}
}

func TestGestationDayClamping(t *testing.T) {
	cases := map[float64]float64{
		-5:  0,
		0:   0,
		150: 150,
		285: 285,
		400: 0,
	}

	for in, want := range cases {
		p := AnimalRequest{GestationDay: f(in)}.Profile()
		if p.GestationDay != want {
			t.Errorf("clamp gestation day %v = %v, want %v", in, p.GestationDay, want)
		}
	}
}

func TestIntakeCurveDayWindow(t *testing.T) {
	cases := map[float64]float64{
		-10: 0,
		0:   0,
		55:  55,
		100: 100,
		240: 100,
	}

	for in, want := range cases {
		p := AnimalProfile{DaysInMilk: in}
		if got := p.IntakeCurveDay(); got != want {
			t.Errorf("intake curve day for dim %v = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizeCoercesUnparseableToZero(t *testing.T) {
	doc := RawFeedDocument{
		ID:           "x",
		DryMatterPct: "91.0",
		Ash:          "",
		CrudeProtein: "NaN",
		EtherExtract: "abc",
		NDF:          "-4",
	}

	rec := doc.Normalize()

	if rec.DryMatterPct != 91.0 {
		t.Errorf("dm = %v, want parsed 91.0", rec.DryMatterPct)
	}
	if rec.Ash != 0 || rec.CrudeProtein != 0 || rec.EtherExtract != 0 {
		t.Error("unparseable nutrient strings must normalize to 0")
	}
	if rec.NDF != 0 {
		t.Errorf("negative values clamp to 0, got %v", rec.NDF)
	}
}

func TestValidateRejectsBadProfiles(t *testing.T) {
	bad := []AnimalProfile{
		{State: "Steer", BodyWeight: 500},
		{State: StateLactating, BodyWeight: 0},
		{State: StateLactating, BodyWeight: 600, MilkVolume: -1},
	}

	for _, p := range bad {
		if p.Validate() == nil {
			t.Errorf("profile %+v should fail validation", p)
		}
	}
}
