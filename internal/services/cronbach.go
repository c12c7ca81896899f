package services

import (
	"math"
	"slices"

	"github.com/soaringjerry/mindscope/internal/models"
)

// ReliabilityStats is Cronbach's alpha over the scored items of one dimension.
type ReliabilityStats struct {
	DimensionID string  `json:"dimensionId"`
	Items       int     `json:"items"`
	Alpha       float64 `json:"alpha"`
	Rating      string  `json:"rating"`
	N           int     `json:"n"`
}

// CronbachAlpha computes alpha for rows of item scores, one row per respondent.
// Population variance is used throughout, so perfectly agreeing items give 1.
// Ragged input, fewer than two items or zero total variance give 0; the result is clamped to [0, 1].
func CronbachAlpha(rows [][]float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	k := len(rows[0])
	if k < 2 {
		return 0
	}
	totals := make([]float64, len(rows))
	column := make([]float64, len(rows))
	var itemVar float64
	for j := 0; j < k; j++ {
		for i, row := range rows {
			if len(row) != k {
				return 0
			}
			column[i] = row[j]
			totals[i] += row[j]
		}
		itemVar += populationVariance(column)
	}
	totalVar := populationVariance(totals)
	if totalVar == 0 {
		return 0
	}
	kf := float64(k)
	alpha := kf / (kf - 1) * (1 - itemVar/totalVar)
	return math.Min(1, math.Max(0, alpha))
}

func populationVariance(xs []float64) float64 {
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var ss float64
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return ss / float64(len(xs))
}

// RateAlpha labels alpha with the conventional George & Mallery bands.
func RateAlpha(alpha float64) string {
	switch {
	case alpha >= 0.9:
		return "excellent"
	case alpha >= 0.8:
		return "good"
	case alpha >= 0.7:
		return "acceptable"
	case alpha >= 0.6:
		return "questionable"
	case alpha >= 0.5:
		return "poor"
	default:
		return "unacceptable"
	}
}

// buildReliability reports alpha for each dimension with at least two scored items.
func buildReliability(a *models.Assessment, subs []*models.Submission) []ReliabilityStats {
	out := []ReliabilityStats{}
	for _, d := range a.Dimensions {
		var items []string
		for _, q := range a.Questions {
			if q.Dimension == d.ID && len(q.Scoring) > 0 {
				items = append(items, q.ID)
			}
		}
		if len(items) < 2 {
			continue
		}
		rows := itemRows(items, subs)
		alpha := math.Round(CronbachAlpha(rows)*10000) / 10000
		out = append(out, ReliabilityStats{DimensionID: d.ID, Items: len(items), Alpha: alpha, Rating: RateAlpha(alpha), N: len(rows)})
	}
	return out
}

// itemRows keeps only submissions with a score for every item.
func itemRows(items []string, subs []*models.Submission) [][]float64 {
	ids := slices.Sorted(slices.Values(items))
	rows := make([][]float64, 0, len(subs))
	for _, sub := range subs {
		scores := make(map[string]float64, len(sub.Answers))
		for _, ans := range sub.Answers {
			if ans.Score != nil {
				scores[ans.QuestionID] = *ans.Score
			}
		}
		row := make([]float64, 0, len(ids))
		for _, id := range ids {
			v, ok := scores[id]
			if !ok {
				break
			}
			row = append(row, v)
		}
		if len(row) == len(ids) {
			rows = append(rows, row)
		}
	}
	return rows
}
