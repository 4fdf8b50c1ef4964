package optimizer

import (
	"math"
	"testing"
)

func TestLexicalOverlap(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical", a: "apple earnings report", b: "apple earnings report", want: 1},
		{name: "disjoint", a: "apple earnings", b: "banana smoothie", want: 0},
		{name: "partial", a: "apple earnings report", b: "apple earnings report today", want: 0.75},
		{name: "case insensitive", a: "Apple Earnings", b: "apple earnings", want: 1},
		{name: "punctuation stripped", a: "apple, earnings!", b: "apple earnings", want: 1},
		{name: "empty side", a: "", b: "apple", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lexicalOverlap(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
