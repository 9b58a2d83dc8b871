package authn

import "testing"

func TestHashTokenDeterministic(t *testing.T) {
	a := HashToken("token-1")
	b := HashToken("token-1")
	c := HashToken("token-2")
	if a != b {
		t.Fatalf("expected deterministic hash")
	}
	if a == c {
		t.Fatalf("expected different hashes for different tokens")
	}
}

func TestParseBearerToken(t *testing.T) {
	cases := []struct {
		in    string
		token string
		ok    bool
	}{
		{"Bearer abc123", "abc123", true},
		{"bearer abc123", "abc123", true},
		{"  Bearer   abc123  ", "abc123", true},
		{"Basic abc123", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		token, ok := parseBearerToken(c.in)
		if ok != c.ok || token != c.token {
			t.Fatalf("%q: expected (%q,%v), got (%q,%v)", c.in, c.token, c.ok, token, ok)
		}
	}
}
