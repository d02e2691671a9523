package gazetteer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleTable = `ID,Name,Latitude,Longitude,ISO639P3code,Macroarea,Classification
indo1319,Indo-European,,,,,
balt1263,Balto-Slavic,,,,,indo1319
slav1255,Slavic,,,,,indo1319/balt1263
east1426,East Slavic,,,,,indo1319/balt1263/slav1255
russ1263,Russian,59.0,50.0,rus,Eurasia,indo1319/balt1263/slav1255/east1426
adyg1241,Adyghe,44.0,39.33,ady,Eurasia,abkh1242/circ1239
russ9999,Russian,1.0,1.0,xxx,Eurasia,
`

func mustParse(t *testing.T) *Table {
	t.Helper()
	tbl, err := Parse(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return tbl
}

func TestParse_Indexes(t *testing.T) {
	tbl := mustParse(t)
	if tbl.Len() != 7 {
		t.Errorf("Len() = %d, want 7", tbl.Len())
	}

	c, ok := tbl.Coordinates("Russian")
	if !ok || c.Lat != 59 || c.Lon != 50 {
		t.Errorf("Coordinates(Russian) = %v, %v; first occurrence should win", c, ok)
	}
	if id, _ := tbl.GlotID("Russian"); id != "russ1263" {
		t.Errorf("GlotID(Russian) = %q", id)
	}
	if iso, _ := tbl.ISO("Adyghe"); iso != "ady" {
		t.Errorf("ISO(Adyghe) = %q", iso)
	}
	if m, _ := tbl.Macroarea("Adyghe"); m != "Eurasia" {
		t.Errorf("Macroarea(Adyghe) = %q", m)
	}
	if n, _ := tbl.NameByISO("rus"); n != "Russian" {
		t.Errorf("NameByISO(rus) = %q", n)
	}
	if id, _ := tbl.GlotIDByISO("ady"); id != "adyg1241" {
		t.Errorf("GlotIDByISO(ady) = %q", id)
	}
	if iso, _ := tbl.ISOByGlotID("russ1263"); iso != "rus" {
		t.Errorf("ISOByGlotID(russ1263) = %q", iso)
	}
	if n, _ := tbl.NameByGlotID("adyg1241"); n != "Adyghe" {
		t.Errorf("NameByGlotID(adyg1241) = %q", n)
	}
	if c, ok := tbl.CoordinatesByGlotID("russ9999"); !ok || c.Lat != 1 {
		t.Errorf("CoordinatesByGlotID(russ9999) = %v, %v", c, ok)
	}
}

func TestParse_Misses(t *testing.T) {
	tbl := mustParse(t)
	if _, ok := tbl.Coordinates("Klingon"); ok {
		t.Error("Coordinates(Klingon) should miss")
	}
	if _, ok := tbl.Coordinates("Slavic"); ok {
		t.Error("Coordinates(Slavic) should miss: no coordinates in table")
	}
	if _, ok := tbl.ISO("Slavic"); ok {
		t.Error("ISO(Slavic) should miss: empty cell")
	}
}

func TestAffiliation(t *testing.T) {
	tbl := mustParse(t)
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"Russian", "Indo-European, Balto-Slavic, Slavic, East Slavic", true},
		{"Adyghe", "", true},
		{"Indo-European", "", true},
		{"Klingon", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tbl.Affiliation(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Affiliation(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	// Second call hits the cache.
	if got, _ := tbl.Affiliation("Russian"); got != "Indo-European, Balto-Slavic, Slavic, East Slavic" {
		t.Errorf("cached Affiliation(Russian) = %q", got)
	}
}

func TestParse_MissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("Name,Latitude,Longitude\nRussian,1,2\n"))
	if !errors.Is(err, ErrMalformedTable) {
		t.Errorf("Parse() error = %v, want ErrMalformedTable", err)
	}
}

func TestParse_Aliases(t *testing.T) {
	tbl, err := Parse(strings.NewReader("glottocode,name,lat,lon,iso\nabcd1234,Foo,1,2,foo\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if id, ok := tbl.GlotID("Foo"); !ok || id != "abcd1234" {
		t.Errorf("GlotID(Foo) = %q, %v", id, ok)
	}
	if iso, _ := tbl.ISO("Foo"); iso != "foo" {
		t.Errorf("ISO(Foo) = %q", iso)
	}
}

func TestLoad_TabSeparated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glottolog.tsv")
	data := "ID\tName\tLatitude\tLongitude\nabcd1234\tFoo Bar\t10.5\t-20\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	c, ok := tbl.Coordinates("Foo Bar")
	if !ok || c.Lat != 10.5 || c.Lon != -20 {
		t.Errorf("Coordinates(Foo Bar) = %v, %v", c, ok)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("Load() on missing file should fail")
	}
}
