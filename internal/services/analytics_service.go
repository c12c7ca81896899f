package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/soaringjerry/mindscope/internal/analysis"
	"github.com/soaringjerry/mindscope/internal/models"
)

type AnalyticsStore interface {
	GetAssessment(id string) (*models.Assessment, error)
	ListSubmissions(filter SubmissionFilter) ([]*models.Submission, error)
}

type AnalyticsService struct {
	store    AnalyticsStore
	analyzer *analysis.Analyzer
}

type LevelCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

func (c *LevelCounts) add(l models.Level) {
	switch l {
	case models.LevelLow:
		c.Low++
	case models.LevelHigh:
		c.High++
	default:
		c.Medium++
	}
}

type DimensionStats struct {
	DimensionID    string      `json:"dimensionId"`
	DimensionName  string      `json:"dimensionName"`
	Responses      int         `json:"responses"`
	MeanPercentage float64     `json:"meanPercentage"`
	Levels         LevelCounts `json:"levels"`
}

type AnalyticsTimeseries struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AnalyticsSummary struct {
	AssessmentID     string                `json:"assessmentId"`
	Instrument       string                `json:"instrument"`
	TotalSubmissions int                   `json:"totalSubmissions"`
	Dimensions       []DimensionStats      `json:"dimensions"`
	Reliability      []ReliabilityStats    `json:"reliability"`
	Types            map[string]int        `json:"types"`
	Severities       map[string]int        `json:"severities"`
	Timeseries       []AnalyticsTimeseries `json:"timeseries"`
}

// NewAnalyticsService reports on store's submissions. A nil analyzer uses the built-in instruments.
func NewAnalyticsService(store AnalyticsStore, analyzer *analysis.Analyzer) *AnalyticsService {
	if analyzer == nil {
		analyzer = analysis.NewAnalyzer(nil)
	}
	return &AnalyticsService{store: store, analyzer: analyzer}
}

func (s *AnalyticsService) Summary(rawID string) (*AnalyticsSummary, error) {
	id, ok := NormalizeIDParam(rawID)
	if !ok {
		return nil, NewInvalidError("Invalid assessment id.")
	}
	a, err := s.store.GetAssessment(id)
	if err != nil {
		return nil, fmt.Errorf("get assessment %s: %w", id, err)
	}
	if a == nil {
		return nil, NewNotFoundError("Assessment not found.")
	}
	subs, err := s.store.ListSubmissions(SubmissionFilter{AssessmentID: id})
	if err != nil {
		return nil, fmt.Errorf("list submissions for %s: %w", id, err)
	}
	return &AnalyticsSummary{
		AssessmentID:     id,
		Instrument:       string(s.analyzer.Family(a)),
		TotalSubmissions: len(subs),
		Dimensions:       buildDimensionStats(subs),
		Reliability:      buildReliability(a, subs),
		Types:            countBy(subs, func(r *models.DetailedResult) string { return r.OverallType }),
		Severities: countBy(subs, func(r *models.DetailedResult) string {
			if r.Clinical == nil {
				return ""
			}
			return string(r.Clinical.Severity)
		}),
		Timeseries: buildTimeseries(subs),
	}, nil
}

// buildDimensionStats aggregates stored dimension scores in first-seen order.
func buildDimensionStats(subs []*models.Submission) []DimensionStats {
	index := map[string]int{}
	out := []DimensionStats{}
	sums := []float64{}
	for _, sub := range subs {
		if sub.DetailedResult == nil {
			continue
		}
		for _, ds := range sub.DetailedResult.DimensionScores {
			i, ok := index[ds.DimensionID]
			if !ok {
				i = len(out)
				index[ds.DimensionID] = i
				out = append(out, DimensionStats{DimensionID: ds.DimensionID, DimensionName: ds.DimensionName})
				sums = append(sums, 0)
			}
			out[i].Responses++
			out[i].Levels.add(ds.Level)
			sums[i] += float64(ds.Percentage)
		}
	}
	for i := range out {
		if out[i].Responses > 0 {
			out[i].MeanPercentage = math.Round(sums[i]/float64(out[i].Responses)*100) / 100
		}
	}
	return out
}

func countBy(subs []*models.Submission, key func(*models.DetailedResult) string) map[string]int {
	out := map[string]int{}
	for _, sub := range subs {
		if sub.DetailedResult == nil {
			continue
		}
		if k := key(sub.DetailedResult); k != "" {
			out[k]++
		}
	}
	return out
}

func buildTimeseries(subs []*models.Submission) []AnalyticsTimeseries {
	counts := map[string]int{}
	for _, sub := range subs {
		counts[sub.CreatedAt.UTC().Format("2006-01-02")]++
	}
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]AnalyticsTimeseries, 0, len(days))
	for _, d := range days {
		out = append(out, AnalyticsTimeseries{Date: d, Count: counts[d]})
	}
	return out
}
