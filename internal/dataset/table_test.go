package dataset

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	in := "\ufeffname,lat,lon\nAdyghe,44,39\nRussian,59\n"
	tbl, err := ReadCSV(strings.NewReader(in), ',')
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if got, want := tbl.Columns, []string{"name", "lat", "lon"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Columns = %v, want %v", got, want)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	if got := tbl.Get(1, "lon"); got != "" {
		t.Errorf("short row padded to %q, want empty", got)
	}
	if got := tbl.Get(0, "missing"); got != "" {
		t.Errorf("Get(unknown column) = %q, want empty", got)
	}

	if _, err := ReadCSV(strings.NewReader(""), ','); err == nil {
		t.Error("ReadCSV(empty) expected error")
	}
}

func TestTable_WriteCSV(t *testing.T) {
	tbl := NewTable("x", "a", "b")
	if err := tbl.Append("1", "two, three"); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Append("only one"); err == nil {
		t.Error("Append() with wrong width expected error")
	}
	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	want := "a,b\n1,\"two, three\"\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() = %q, want %q", buf.String(), want)
	}
}

func TestTable_SelectFilterStrip(t *testing.T) {
	tbl := NewTable("x", "lang", "v", "w")
	tbl.Rows = [][]string{{"a", "1", ""}, {"b", "", "2"}, {"c", "3", "4"}}
	tbl.FillEmpty(NA)

	sel, err := tbl.Select("w", "lang")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := sel.Rows[0], []string{NA, "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Select() row = %v, want %v", got, want)
	}
	if _, err := tbl.Select("nope"); err == nil {
		t.Error("Select(unknown) expected error")
	}

	stripped := tbl.StripNA("v", "unknown")
	if got, _ := stripped.Column("lang"); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("StripNA(v) languages = %v, want [a c]", got)
	}
	if got := tbl.StripNA().Len(); got != 3 {
		t.Errorf("StripNA() with no columns kept %d rows, want 3", got)
	}

	if err := tbl.AddColumn("z", []string{"1", "2", "3"}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddColumn("short", []string{"1"}); err == nil {
		t.Error("AddColumn() length mismatch expected error")
	}
	if err := tbl.Rename("z", "zz"); err != nil || tbl.Index("zz") != 3 {
		t.Errorf("Rename() = %v, index %d", err, tbl.Index("zz"))
	}
}

func TestJoin(t *testing.T) {
	left := NewTable("l", "lang", "x")
	left.Rows = [][]string{{"a", "1"}, {"b", "2"}}
	right := NewTable("r", "lang", "x", "y")
	right.Rows = [][]string{{"b", "20", "200"}, {"c", "30", "300"}}

	tests := []struct {
		name string
		how  JoinHow
		want [][]string
	}{
		{
			name: "inner",
			how:  JoinInner,
			want: [][]string{{"b", "2", "20", "200"}},
		},
		{
			name: "outer",
			how:  JoinOuter,
			want: [][]string{
				{"a", "1", NA, NA},
				{"b", "2", "20", "200"},
				{"c", NA, "30", "300"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Join(left, right, []string{"lang"}, tt.how)
			if err != nil {
				t.Fatal(err)
			}
			if want := []string{"lang", "x", "x_right", "y"}; !reflect.DeepEqual(got.Columns, want) {
				t.Errorf("Columns = %v, want %v", got.Columns, want)
			}
			if !reflect.DeepEqual(got.Rows, tt.want) {
				t.Errorf("Rows = %v, want %v", got.Rows, tt.want)
			}
		})
	}

	if _, err := Join(left, right, []string{"missing"}, JoinInner); err == nil {
		t.Error("Join() on missing key expected error")
	}
}

func TestParseJoinHow(t *testing.T) {
	for _, s := range []string{"inner", "outer"} {
		if _, err := ParseJoinHow(s); err != nil {
			t.Errorf("ParseJoinHow(%q) error = %v", s, err)
		}
	}
	if _, err := ParseJoinHow("left"); err == nil {
		t.Error("ParseJoinHow(left) expected error")
	}
}
