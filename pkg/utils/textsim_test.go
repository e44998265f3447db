package utils

import (
	"math"
	"testing"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical",
			a:    "the legacy code was a mess",
			b:    "the legacy code was a mess",
			want: 1.0,
		},
		{
			name: "case and punctuation insensitive",
			a:    "Legacy code, was a MESS!",
			b:    "the legacy code was a mess",
			want: 5.0 / 6.0,
		},
		{
			name: "disjoint",
			a:    "kubernetes networking",
			b:    "sourdough starters",
			want: 0,
		},
		{
			name: "partial overlap",
			a:    "we migrated the billing database",
			b:    "the billing database crashed",
			want: 3.0 / 6.0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			want: 0,
		},
		{
			name: "one empty",
			a:    "something",
			b:    "",
			want: 0,
		},
		{
			name: "repeated tokens collapse",
			a:    "go go go",
			b:    "go",
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jaccard(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestJaccardSymmetric(t *testing.T) {
	a := "the outage lasted nine hours"
	b := "nine hours of total outage"
	if Jaccard(a, b) != Jaccard(b, a) {
		t.Errorf("Jaccard is not symmetric for %q / %q", a, b)
	}
}

func TestTokenSet(t *testing.T) {
	set := TokenSet("Hello, World! hello-again 42")
	want := []string{"hello", "world", "again", "42"}
	if len(set) != len(want) {
		t.Fatalf("TokenSet size = %d, want %d (%v)", len(set), len(want), set)
	}
	for _, tok := range want {
		if _, ok := set[tok]; !ok {
			t.Errorf("TokenSet missing token %q", tok)
		}
	}
}
