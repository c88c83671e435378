package privacy

import "testing"

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		want string
	}{
		{"ipv4", "203.0.113.42", "203.0.113.0/24"},
		{"ipv4 with whitespace", " 198.51.100.7 ", "198.51.100.0/24"},
		{"ipv6", "2001:db8:abcd:12:ffff:ffff:ffff:ffff", "2001:db8:abcd:12::/64"},
		{"garbage", "not-an-ip", "redacted"},
		{"empty", "", "redacted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnonymizeIP(tt.ip); got != tt.want {
				t.Fatalf("AnonymizeIP(%q) = %q, want %q", tt.ip, got, tt.want)
			}
		})
	}
}
