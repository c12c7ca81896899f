package services

import "strconv"

// ReverseScore mirrors raw on a 1..points Likert scale. Values outside the scale clamp first.
func ReverseScore(raw, points int) int {
	if points < 2 {
		return raw
	}
	return points + 1 - min(max(raw, 1), points)
}

// LikertScoring maps the option labels "1".."points" to their scores.
// Reverse-keyed items score points..1.
func LikertScoring(points int, reverse bool) map[string]float64 {
	m := make(map[string]float64, points)
	for raw := 1; raw <= points; raw++ {
		score := raw
		if reverse {
			score = ReverseScore(raw, points)
		}
		m[strconv.Itoa(raw)] = float64(score)
	}
	return m
}
