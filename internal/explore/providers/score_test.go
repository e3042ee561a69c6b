package providers

import "testing"

func TestScoreFrom100(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want *float64
	}{
		{"zero is absent", 0, nil},
		{"negative is absent", -3, nil},
		{"mid scale", 85, ptrF(8.5)},
		{"full scale", 100, ptrF(10)},
		{"clamps overflow", 140, ptrF(10)},
		{"rounds to one decimal", 87.6, ptrF(8.8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreFrom100(tt.in)
			if !scoreEq(got, tt.want) {
				t.Errorf("ScoreFrom100(%v) = %v, want %v", tt.in, fmtScore(got), fmtScore(tt.want))
			}
		})
	}
}

func TestScoreFrom10(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want *float64
	}{
		{"zero is absent", 0, nil},
		{"passthrough", 7.3, ptrF(7.3)},
		{"rounds", 8.46, ptrF(8.5)},
		{"clamps overflow", 11, ptrF(10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreFrom10(tt.in)
			if !scoreEq(got, tt.want) {
				t.Errorf("ScoreFrom10(%v) = %v, want %v", tt.in, fmtScore(got), fmtScore(tt.want))
			}
		})
	}
}

func TestScoreFrom5(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want *float64
	}{
		{"zero is absent", 0, nil},
		{"doubles", 4.5, ptrF(9)},
		{"rounds", 3.77, ptrF(7.5)},
		{"clamps overflow", 6, ptrF(10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreFrom5(tt.in)
			if !scoreEq(got, tt.want) {
				t.Errorf("ScoreFrom5(%v) = %v, want %v", tt.in, fmtScore(got), fmtScore(tt.want))
			}
		})
	}
}

// Re-normalizing an already normalized score must not change it.
func TestScoreFrom10_Idempotent(t *testing.T) {
	first := ScoreFrom10(8.5)
	if first == nil {
		t.Fatal("expected a score")
	}
	second := ScoreFrom10(*first)
	if second == nil || *second != *first {
		t.Errorf("got %v after renormalizing %v", fmtScore(second), *first)
	}
}

func ptrF(v float64) *float64 { return &v }

func scoreEq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtScore(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
