package series

import (
	"cmp"
	"math"
	"strings"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type point struct {
	Key   string
	Group string
	Count float64
}

func byKey(a, b point) int { return cmp.Compare(a.Key, b.Key) }

func keyOf(p point) string { return p.Key }

func countOf(p point) float64 { return p.Count }

func TestLinear_FilterMapSort(t *testing.T) {
	input := []point{{"c", "x", 3}, {"a", "y", 1}, {"b", "x", 2}, {"a", "x", 4}}
	s := From(input)

	filtered := s.Filter(func(p point) bool { return p.Group == "x" })
	if diff := gocmp.Diff([]point{{"c", "x", 3}, {"b", "x", 2}, {"a", "x", 4}}, filtered.Data()); diff != "" {
		t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
	}

	doubled := Map(s, func(p point) float64 { return p.Count * 2 })
	if diff := gocmp.Diff([]float64{6, 2, 4, 8}, doubled.Data()); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}

	sorted := s.Sort(byKey)
	want := []point{{"a", "y", 1}, {"a", "x", 4}, {"b", "x", 2}, {"c", "x", 3}}
	if diff := gocmp.Diff(want, sorted.Data()); diff != "" {
		t.Errorf("Sort() is not stable (-want +got):\n%s", diff)
	}
	if !sorted.IsSorted(byKey) || s.IsSorted(byKey) {
		t.Errorf("IsSorted() disagrees with Sort()")
	}

	if diff := gocmp.Diff(input, s.Data()); diff != "" {
		t.Errorf("receiver was mutated (-want +got):\n%s", diff)
	}
	if diff := gocmp.Diff(input, s.Sort(nil).Data()); diff != "" {
		t.Errorf("Sort(nil) reordered records (-want +got):\n%s", diff)
	}
}

func TestLinear_FromCopies(t *testing.T) {
	input := []point{{"a", "x", 1}}
	s := From(input)
	input[0].Count = 99
	if s.At(0).Count != 1 {
		t.Errorf("From() did not copy its input")
	}
	out := s.Data()
	out[0].Count = 42
	if s.At(0).Count != 1 {
		t.Errorf("Data() exposed internal storage")
	}
}

func TestGroupBy(t *testing.T) {
	s := From([]point{{"1", "B", 1}, {"2", "A", 2}, {"3", "B", 3}, {"4", "C", 4}, {"5", "A", 5}})
	g := GroupBy(s, func(p point) string { return p.Group })

	if diff := gocmp.Diff([]string{"B", "A", "C"}, g.Keys()); diff != "" {
		t.Errorf("GroupBy() key order mismatch (-want +got):\n%s", diff)
	}
	b, ok := g.Get("B")
	if !ok {
		t.Fatalf("group B missing")
	}
	if diff := gocmp.Diff([]point{{"1", "B", 1}, {"3", "B", 3}}, b.Data()); diff != "" {
		t.Errorf("group B mismatch (-want +got):\n%s", diff)
	}
	if _, ok := g.Get("Z"); ok {
		t.Errorf("Get(Z) reported a group that does not exist")
	}
}

func TestFill(t *testing.T) {
	s := From([]point{{"2021-01-04", "A", 3}, {"2021-01-05", "A", 5}})
	keys := []string{"2021-01-04", "2021-01-05", "2021-01-06", "2021-01-06"}
	filler := func(k string) point { return point{Key: k, Group: "A"} }

	once := Fill(s, keyOf, keys, filler)
	want := []point{{"2021-01-04", "A", 3}, {"2021-01-05", "A", 5}, {"2021-01-06", "A", 0}}
	if diff := gocmp.Diff(want, once.Data()); diff != "" {
		t.Errorf("Fill() mismatch (-want +got):\n%s", diff)
	}

	twice := Fill(once, keyOf, keys, filler)
	if diff := gocmp.Diff(once.Data(), twice.Data()); diff != "" {
		t.Errorf("Fill() is not idempotent (-once +twice):\n%s", diff)
	}

	if s.Len() != 2 {
		t.Errorf("Fill() mutated the receiver")
	}
}

func TestRolling_LengthLaw(t *testing.T) {
	sum := func(w []point) float64 {
		total := 0.0
		for _, p := range w {
			total += p.Count
		}
		return total
	}

	tests := []struct {
		name     string
		length   int
		window   int
		expected int
	}{
		{"Empty", 0, 3, 0},
		{"Shorter", 2, 3, 0},
		{"Exact", 3, 3, 1},
		{"Longer", 10, 7, 4},
		{"Unit", 5, 1, 5},
		{"ZeroWindow", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]point, tt.length)
			for i := range data {
				data[i] = point{Count: float64(i)}
			}
			got := Rolling(From(data), tt.window, sum)
			if got.Len() != tt.expected {
				t.Errorf("Rolling(%d) on length %d = %d records, want %d", tt.window, tt.length, got.Len(), tt.expected)
			}
		})
	}
}

func TestRolling_CenteredWindow(t *testing.T) {
	var data []point
	for _, k := range strings.Split("a b c d e f g h i", " ") {
		data = append(data, point{Key: k, Count: float64(len(data) + 1)})
	}

	smoothed := Rolling(From(data), 7, func(w []point) point {
		total := 0.0
		for _, p := range w {
			total += p.Count
		}
		return point{Key: w[3].Key, Count: total / float64(len(w))}
	})

	want := []point{{Key: "d", Count: 4}, {Key: "e", Count: 5}, {Key: "f", Count: 6}}
	if diff := gocmp.Diff(want, smoothed.Data()); diff != "" {
		t.Errorf("Rolling() mismatch (-want +got):\n%s", diff)
	}
}

func TestDivideBy(t *testing.T) {
	num := From([]point{{"d1", "A", 3}, {"d2", "A", 5}, {"d3", "A", 2}, {"d4", "A", 0}})
	den := From([]point{{"d1", "", 10}, {"d2", "", 10}, {"d4", "", 0}, {"d1", "", 99}})

	got := DivideBy(num, den, keyOf, countOf).Data()
	if len(got) != 4 {
		t.Fatalf("DivideBy() returned %d records, want 4", len(got))
	}

	first := got[0]
	if first.Record != (point{"d1", "A", 3}) {
		t.Errorf("Record = %+v, want the numerator record", first.Record)
	}
	if first.Proportion != 0.3 || first.Total != 10 {
		t.Errorf("Proportion/Total = %v/%v, want 0.3/10", first.Proportion, first.Total)
	}
	if math.Abs(first.ConfidenceLow-0.107791268119) > 1e-10 || math.Abs(first.ConfidenceHigh-0.603221850766) > 1e-10 {
		t.Errorf("interval = [%v, %v], want Wilson(3, 10)", first.ConfidenceLow, first.ConfidenceHigh)
	}

	if !math.IsInf(got[2].Proportion, 1) {
		t.Errorf("missing denominator key: Proportion = %v, want +Inf", got[2].Proportion)
	}
	if !math.IsNaN(got[3].Proportion) || !math.IsNaN(got[3].ConfidenceLow) {
		t.Errorf("zero over zero: Proportion = %v, ConfidenceLow = %v, want NaN", got[3].Proportion, got[3].ConfidenceLow)
	}
}

func TestRenameField(t *testing.T) {
	rows := From([]Row{
		{"pangoLineage": "B.1.1.7", "count": 3},
		{"lineage": "A", "count": 1},
	})
	renamed := RenameField(rows, "pangoLineage", "lineage")

	want := []Row{
		{"lineage": "B.1.1.7", "count": 3},
		{"lineage": "A", "count": 1},
	}
	if diff := gocmp.Diff(want, renamed.Data()); diff != "" {
		t.Errorf("RenameField() mismatch (-want +got):\n%s", diff)
	}
	if _, ok := rows.At(0)["pangoLineage"]; !ok {
		t.Errorf("RenameField() mutated the source row")
	}
}

func TestLinear_Concat(t *testing.T) {
	a := From([]int{1, 2})
	b := From([]int{3})
	if diff := gocmp.Diff([]int{1, 2, 3}, a.Concat(b).Data()); diff != "" {
		t.Errorf("Concat() mismatch (-want +got):\n%s", diff)
	}
	if diff := gocmp.Diff([]int{}, From[int](nil).Concat(From[int](nil)).Data(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Concat() of empties mismatch:\n%s", diff)
	}
}
