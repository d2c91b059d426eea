package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{"brazilian mobile with area code", "(11) 98765-4321", "BR", "+5511987654321"},
		{"already international", "+55 21 99876-5432", "", "+5521998765432"},
		{"blank", "   ", "BR", ""},
		{"garbage is returned trimmed", " not-a-phone ", "BR", "not-a-phone"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeE164(tc.input, tc.region); got != tc.want {
				t.Fatalf("NormalizeE164(%q, %q) = %q, want %q", tc.input, tc.region, got, tc.want)
			}
		})
	}
}
