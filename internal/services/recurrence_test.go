package services

import "testing"

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		date string
		n    int
		want string
	}{
		{"same month", "15/03/2026", 0, "15/03/2026"},
		{"plain shift", "15/03/2026", 1, "15/04/2026"},
		{"clamp to february", "31/01/2026", 1, "28/02/2026"},
		{"clamp leap february", "31/01/2028", 1, "29/02/2028"},
		{"clamp to thirty days", "31/03/2026", 1, "30/04/2026"},
		{"cross year boundary", "10/11/2026", 3, "10/02/2027"},
		{"unparseable passes through", "em breve", 2, "em breve"},
		{"empty passes through", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := addMonths(tt.date, tt.n); got != tt.want {
				t.Fatalf("addMonths(%q, %d) = %q, want %q", tt.date, tt.n, got, tt.want)
			}
		})
	}
}
