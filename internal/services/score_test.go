package services

import "testing"

func TestReverseScore(t *testing.T) {
	cases := []struct{ raw, points, want int }{
		{1, 5, 5}, {3, 5, 3}, {5, 5, 1},
		{0, 5, 5}, {9, 5, 1},
		{2, 7, 6},
		{4, 1, 4},
	}
	for _, c := range cases {
		if got := ReverseScore(c.raw, c.points); got != c.want {
			t.Fatalf("ReverseScore(%d, %d) = %d, want %d", c.raw, c.points, got, c.want)
		}
	}
}

func TestLikertScoring(t *testing.T) {
	fwd := LikertScoring(5, false)
	rev := LikertScoring(5, true)
	if len(fwd) != 5 || fwd["1"] != 1 || fwd["5"] != 5 {
		t.Fatalf("forward = %v", fwd)
	}
	if rev["1"] != 5 || rev["4"] != 2 {
		t.Fatalf("reverse = %v", rev)
	}
}
