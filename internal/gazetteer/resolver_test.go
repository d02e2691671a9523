package gazetteer

import "testing"

func TestResolver_AccumulatesWarnings(t *testing.T) {
	r := NewResolver(mustParse(t))

	coords := r.CoordinatesAll([]string{"Russian", "Klingon", "Adyghe", "Slavic"})
	if coords[0] == nil || coords[2] == nil {
		t.Fatalf("CoordinatesAll() = %v, want hits for Russian and Adyghe", coords)
	}
	if coords[1] != nil || coords[3] != nil {
		t.Errorf("CoordinatesAll() = %v, want misses for Klingon and Slavic", coords)
	}

	ws := r.Warnings()
	if len(ws) != 2 {
		t.Fatalf("Warnings() = %v, want 2", ws)
	}
	if ws[0].Key != "Klingon" || ws[0].Func != "coordinates" {
		t.Errorf("Warnings()[0] = %+v", ws[0])
	}

	// The returned slice is a copy.
	ws[0].Key = "changed"
	if r.Warnings()[0].Key != "Klingon" {
		t.Error("Warnings() exposed internal state")
	}

	r.Reset()
	if len(r.Warnings()) != 0 {
		t.Error("Reset() did not clear warnings")
	}
}

func TestResolver_Batches(t *testing.T) {
	r := NewResolver(mustParse(t))

	affs := r.Affiliations([]string{"Russian", "Nope"})
	if affs[0] == "" || affs[1] != "" {
		t.Errorf("Affiliations() = %q", affs)
	}
	if got := r.ISOs([]string{"Adyghe"}); got[0] != "ady" {
		t.Errorf("ISOs() = %q", got)
	}
	if got := r.Macroareas([]string{"Slavic"}); got[0] != "" {
		t.Errorf("Macroareas() = %q", got)
	}
	if got := r.NamesByGlotID([]string{"russ1263", "zzzz0000"}); got[0] != "Russian" || got[1] != "" {
		t.Errorf("NamesByGlotID() = %q", got)
	}
	if got := r.NamesByISO([]string{"ady"}); got[0] != "Adyghe" {
		t.Errorf("NamesByISO() = %q", got)
	}
	// Nope (affiliation), Slavic (macroarea), zzzz0000 (by glot id).
	if n := len(r.Warnings()); n != 3 {
		t.Errorf("len(Warnings()) = %d, want 3: %v", n, r.Warnings())
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(mustParse(t))

	e := r.Resolve("Russian")
	if e.ID != "russ1263" || e.Coordinates == nil || e.ISO != "rus" {
		t.Errorf("Resolve(Russian) = %+v", e)
	}
	if len(r.Warnings()) != 0 {
		t.Errorf("Warnings() = %v, want none", r.Warnings())
	}

	e = r.Resolve("Slavic")
	if e.Coordinates != nil {
		t.Errorf("Resolve(Slavic).Coordinates = %v", e.Coordinates)
	}
	// coordinates, ISO and macroarea all missing.
	if n := len(r.Warnings()); n != 3 {
		t.Errorf("len(Warnings()) = %d, want 3", n)
	}

	if e := r.Resolve("Klingon"); e.Name != "Klingon" || e.ID != "" {
		t.Errorf("Resolve(Klingon) = %+v", e)
	}
	if w := r.Warnings()[3]; w.String() != "(resolve) Klingon: language not found" {
		t.Errorf("Warning.String() = %q", w.String())
	}
}
