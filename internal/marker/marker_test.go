package marker

import "testing"

func TestIDsValid(t *testing.T) {
	tests := []struct {
		name string
		ids  IDs
		want bool
	}{
		{"distinct", IDs{0, 1, 2, 3}, true},
		{"distinct high", IDs{10, 20, 30, 40}, true},
		{"duplicate", IDs{1, 1, 2, 3}, false},
		{"all same", IDs{5, 5, 5, 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ids.Valid(); got != tt.want {
				t.Errorf("Valid(%v): got %v, want %v", tt.ids, got, tt.want)
			}
		})
	}
}
