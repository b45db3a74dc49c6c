package security

import "testing"

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4d9ba8e5b0a14c9e8a3c.16", "4d9ba8e5b0a14c9e8a3c.16"},
		{"", "unknown"},
		{"../../etc/passwd", "etc_passwd"},
		{"gym/with/slashes", "gym_with_slashes"},
		{"a b  c", "a_b_c"},
		{"___", "unknown"},
		{"..", "unknown"},
		{"ÜmläutGym", "ml_utGym"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeID(tt.in); got != tt.want {
				t.Errorf("SanitizeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeIDLength(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	if got := SanitizeID(string(long)); len(got) > 128 {
		t.Errorf("SanitizeID length = %d, want <= 128", len(got))
	}
}
