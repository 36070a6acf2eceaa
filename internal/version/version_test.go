package version

import (
	"sort"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []string{
		"4.1.19.1",
		"4.0.0",
		"4.2.0.beta2",
		"3",
		"4.1",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			v, err := Parse(input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", input, err)
			}
			if got := v.String(); got != input {
				t.Errorf("String() = %q, want %q", got, input)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("")
	if err != ErrParse {
		t.Errorf("Parse(\"\") error = %v, want ErrParse", err)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "equal", a: "4.1.19.1", b: "4.1.19.1", want: 0},
		{name: "patch greater", a: "4.1.19.2", b: "4.1.19.1", want: 1},
		{name: "minor lower", a: "4.0.19.1", b: "4.1.0.0", want: -1},
		{name: "shorter is lower", a: "4.1", b: "4.1.0", want: -1},
		{name: "missing below zero segment", a: "4.1.19", b: "4.1.19.0", want: -1},
		{name: "major dominates", a: "5.0", b: "4.9.9.9", want: 1},
		{name: "qualifier after numeric", a: "4.2.0.beta2", b: "4.2.0.0", want: 1},
		{name: "qualifiers lexical", a: "4.2.0.beta1", b: "4.2.0.beta2", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := MustParse(tt.a)
			b := MustParse(tt.b)

			if got := Compare(a, b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := Compare(b, a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestCompareTransitive(t *testing.T) {
	a := MustParse("4.0.13.1")
	b := MustParse("4.1.0.0")
	c := MustParse("4.1.19.1")

	if !(a.Less(b) && b.Less(c) && a.Less(c)) {
		t.Errorf("expected %s < %s < %s to be transitive", a, b, c)
	}
}

func TestSortAndMax(t *testing.T) {
	inputs := []string{"4.1.19.1", "4.0.0.1", "4.1.3.2", "3.4.8", "4.1.19.1"}

	versions := make([]Version, 0, len(inputs))
	for _, s := range inputs {
		versions = append(versions, MustParse(s))
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Less(versions[j])
	})

	if got := versions[0].String(); got != "3.4.8" {
		t.Errorf("lowest = %q, want %q", got, "3.4.8")
	}
	if got := versions[len(versions)-1].String(); got != "4.1.19.1" {
		t.Errorf("highest = %q, want %q", got, "4.1.19.1")
	}

	// Max over any non-empty set must agree with the sorted order.
	if got := Max(versions); !got.Equal(versions[len(versions)-1]) {
		t.Errorf("Max() = %s, want %s", got, versions[len(versions)-1])
	}
}

func TestIsZero(t *testing.T) {
	var zero Version
	if !zero.IsZero() {
		t.Error("zero Version should report IsZero")
	}
	if v := MustParse("1.0"); v.IsZero() {
		t.Error("parsed Version should not report IsZero")
	}
	if !zero.Less(MustParse("0")) {
		t.Error("zero Version should order below any parsed version")
	}
}
