package names

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "merged words", in: "ViratKohli", want: "Virat Kohli"},
		{name: "embedded digits", in: "R Sharma2", want: "R Sharma"},
		{name: "irregular whitespace", in: "  MS   Dhoni ", want: "MS Dhoni"},
		{name: "merged team name", in: "RoyalChallengers", want: "Royal Challengers"},
		{name: "digits inside word", in: "Te4am Alpha", want: "Team Alpha"},
		{name: "upper-upper boundary untouched", in: "ABde Villiers", want: "ABde Villiers"},
		{name: "empty", in: "", want: ""},
		{name: "only digits and spaces", in: " 123  45 ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"ViratKohli", "R Sharma", "Team Alpha", "  spaced   out  name ",
		"lowerUPPERlower", "x1y2z3", "Kavaliers XI",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	if !Equal("TeamAlpha", "Team Alpha") {
		t.Fatal("expected TeamAlpha to equal Team Alpha after normalization")
	}
	if Equal("Team Alpha", "Team Beta") {
		t.Fatal("distinct names must not compare equal")
	}
}
