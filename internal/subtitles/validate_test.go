package subtitles

import "testing"

func TestValidateFixesInvertedTiming(t *testing.T) {
	cues := []Cue{{Index: 1, StartMS: 2000, EndMS: 1500, Text: "a"}}
	fixed, issues := Validate(cues)
	if len(issues) == 0 {
		t.Fatal("expected issues to be reported")
	}
	if fixed[0].EndMS != fixed[0].StartMS+minFixDurationMS {
		t.Errorf("end = %d, want start+%d", fixed[0].EndMS, minFixDurationMS)
	}
}

func TestValidateShiftsOverlaps(t *testing.T) {
	cues := []Cue{
		{Index: 1, StartMS: 0, EndMS: 2000, Text: "a"},
		{Index: 2, StartMS: 1500, EndMS: 3000, Text: "b"},
	}
	fixed, issues := Validate(cues)
	if len(issues) == 0 {
		t.Fatal("expected overlap issue")
	}
	if fixed[1].StartMS != 2000 {
		t.Errorf("second cue start = %d, want 2000", fixed[1].StartMS)
	}
	if fixed[1].EndMS != 3500 {
		t.Errorf("second cue end = %d, want 3500", fixed[1].EndMS)
	}
}

func TestValidateShiftPreservesDuration(t *testing.T) {
	cues := []Cue{
		{Index: 1, StartMS: 0, EndMS: 2000, Text: "a"},
		{Index: 2, StartMS: 1000, EndMS: 4000, Text: "b"},
	}
	fixed, _ := Validate(cues)
	if fixed[1].StartMS != 2000 || fixed[1].EndMS != 5000 {
		t.Errorf("shifted cue = {%d,%d}, want {2000,5000}", fixed[1].StartMS, fixed[1].EndMS)
	}
	if got := fixed[1].EndMS - fixed[1].StartMS; got != 3000 {
		t.Errorf("duration after shift = %dms, want 3000ms", got)
	}
}

func TestValidateDropsEmptyAndReindexes(t *testing.T) {
	cues := []Cue{
		{Index: 3, StartMS: 0, EndMS: 1000, Text: "a"},
		{Index: 9, StartMS: 1000, EndMS: 2000, Text: "   "},
		{Index: 4, StartMS: 2000, EndMS: 3000, Text: "c"},
	}
	fixed, issues := Validate(cues)
	if len(fixed) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(fixed))
	}
	if len(issues) == 0 {
		t.Fatal("expected dropped-cue issue")
	}
	if fixed[0].Index != 1 || fixed[1].Index != 2 {
		t.Errorf("indices = %d, %d, want 1, 2", fixed[0].Index, fixed[1].Index)
	}
}

func TestValidateClampsNegativeStart(t *testing.T) {
	fixed, _ := Validate([]Cue{{Index: 1, StartMS: -200, EndMS: 800, Text: "a"}})
	if fixed[0].StartMS != 0 {
		t.Errorf("start = %d, want 0", fixed[0].StartMS)
	}
}

func TestValidateIdempotent(t *testing.T) {
	cues := []Cue{
		{Index: 1, StartMS: 2000, EndMS: 1500, Text: "a"},
		{Index: 2, StartMS: 1800, EndMS: 3000, Text: "b"},
		{Index: 3, StartMS: -5, EndMS: 100, Text: "c"},
	}
	once, issues := Validate(cues)
	if len(issues) == 0 {
		t.Fatal("expected issues on first pass")
	}
	twice, issues2 := Validate(once)
	if len(issues2) != 0 {
		t.Fatalf("expected clean second pass, got %v", issues2)
	}
	if len(twice) != len(once) {
		t.Fatalf("cue count changed on second pass")
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("cue %d changed on second pass: %+v vs %+v", i, once[i], twice[i])
		}
	}
}
