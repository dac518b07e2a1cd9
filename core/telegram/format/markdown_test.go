package format

import "testing"

func TestMD(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"john_doe", `john\_doe`},
		{"*bold* [x]", `\*bold\* \[x]`},
		{"a`b", "a\\`b"},
		{"plain name", "plain name"},
	}
	for _, tc := range cases {
		if got := MD(tc.in); got != tc.want {
			t.Fatalf("MD(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
