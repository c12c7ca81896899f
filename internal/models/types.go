package models

import (
	"maps"
	"slices"
	"time"
)

type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single-choice"
	QuestionText         QuestionType = "text"
	QuestionLikert5      QuestionType = "likert-5"
	QuestionLikert7      QuestionType = "likert-7"
)

// LikertPoints returns the number of scale points for Likert question types, or 0.
func (t QuestionType) LikertPoints() int {
	switch t {
	case QuestionLikert5:
		return 5
	case QuestionLikert7:
		return 7
	default:
		return 0
	}
}

// Level is the qualitative band of a dimension score.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

type Category string

const (
	CategoryPersonality  Category = "personality"
	CategoryCareer       Category = "career"
	CategoryMentalHealth Category = "mental-health"
	CategoryRelationship Category = "relationship"
	CategoryCognitive    Category = "cognitive"
)

// Question belongs to exactly one Assessment. Scoring maps an option value to its score.
type Question struct {
	ID        string             `json:"id"`
	Prompt    string             `json:"prompt"`
	Type      QuestionType       `json:"type"`
	Options   []string           `json:"options,omitempty"`
	Dimension string             `json:"dimension,omitempty"`
	Scoring   map[string]float64 `json:"scoring,omitempty"`
}

// MaxScore is the best possible score for the question, or 0 without a scoring map.
func (q *Question) MaxScore() float64 {
	if len(q.Scoring) == 0 {
		return 0
	}
	first := true
	var best float64
	for _, v := range q.Scoring {
		if first || v > best {
			best = v
			first = false
		}
	}
	return best
}

// ScoreFor looks up the score for an answer value. The bool reports whether the value is scored.
func (q *Question) ScoreFor(value string) (float64, bool) {
	if q.Scoring == nil {
		return 0, false
	}
	v, ok := q.Scoring[value]
	return v, ok
}

type Interpretation struct {
	Low    string `json:"low"`
	Medium string `json:"medium"`
	High   string `json:"high"`
}

func (in Interpretation) For(level Level) string {
	switch level {
	case LevelLow:
		return in.Low
	case LevelHigh:
		return in.High
	default:
		return in.Medium
	}
}

// Dimension is a named sub-scale within an Assessment.
type Dimension struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	LowLabel       string         `json:"lowLabel,omitempty"`
	HighLabel      string         `json:"highLabel,omitempty"`
	Interpretation Interpretation `json:"interpretation"`
}

type ResultType struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Characteristics   []string `json:"characteristics,omitempty"`
	Strengths         []string `json:"strengths,omitempty"`
	GrowthAreas       []string `json:"growthAreas,omitempty"`
	CareerSuggestions []string `json:"careerSuggestions,omitempty"`
	CompatibleTypes   []string `json:"compatibleTypes,omitempty"`
}

type ScientificReference struct {
	ID       string   `json:"id"`
	Authors  []string `json:"authors"`
	Year     int      `json:"year"`
	Title    string   `json:"title"`
	Journal  string   `json:"journal"`
	DOI      string   `json:"doi,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
}

// Assessment is a questionnaire definition.
type Assessment struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	NameZh          string                `json:"nameZh,omitempty"`
	Duration        string                `json:"duration"`
	Description     string                `json:"description"`
	DescriptionZh   string                `json:"descriptionZh,omitempty"`
	Focus           []string              `json:"focus"`
	Category        Category              `json:"category,omitempty"`
	IsPremium       bool                  `json:"isPremium"`
	Instrument      string                `json:"instrument,omitempty"`
	Questions       []Question            `json:"questions"`
	Dimensions      []Dimension           `json:"dimensions,omitempty"`
	ResultTypes     []ResultType          `json:"resultTypes,omitempty"`
	ScientificBasis string                `json:"scientificBasis,omitempty"`
	References      []ScientificReference `json:"references,omitempty"`
	Reliability     *float64              `json:"reliability,omitempty"`
	Validity        *float64              `json:"validity,omitempty"`
}

// DisplayName prefers the primary name and falls back to the Chinese name.
func (a *Assessment) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.NameZh
}

// Question returns the question with the given id.
func (a *Assessment) Question(id string) (*Question, bool) {
	for i := range a.Questions {
		if a.Questions[i].ID == id {
			return &a.Questions[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so stores never hand out shared slices or maps.
func (a *Assessment) Clone() *Assessment {
	if a == nil {
		return nil
	}
	out := *a
	out.Focus = slices.Clone(a.Focus)
	if a.Questions != nil {
		out.Questions = make([]Question, len(a.Questions))
		for i, q := range a.Questions {
			q.Options = slices.Clone(q.Options)
			q.Scoring = maps.Clone(q.Scoring)
			out.Questions[i] = q
		}
	}
	out.Dimensions = slices.Clone(a.Dimensions)
	if a.ResultTypes != nil {
		out.ResultTypes = make([]ResultType, len(a.ResultTypes))
		for i, rt := range a.ResultTypes {
			rt.Characteristics = slices.Clone(rt.Characteristics)
			rt.Strengths = slices.Clone(rt.Strengths)
			rt.GrowthAreas = slices.Clone(rt.GrowthAreas)
			rt.CareerSuggestions = slices.Clone(rt.CareerSuggestions)
			rt.CompatibleTypes = slices.Clone(rt.CompatibleTypes)
			out.ResultTypes[i] = rt
		}
	}
	if a.References != nil {
		out.References = make([]ScientificReference, len(a.References))
		for i, ref := range a.References {
			ref.Authors = slices.Clone(ref.Authors)
			out.References[i] = ref
		}
	}
	if a.Reliability != nil {
		v := *a.Reliability
		out.Reliability = &v
	}
	if a.Validity != nil {
		v := *a.Validity
		out.Validity = &v
	}
	return &out
}

// Answer is one respondent's response to one Question.
type Answer struct {
	QuestionID string   `json:"questionId"`
	Value      string   `json:"value"`
	Score      *float64 `json:"score,omitempty"`
}

type Respondent struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Submission is one completed attempt at an Assessment. Immutable after creation.
type Submission struct {
	ID             string          `json:"id"`
	AssessmentID   string          `json:"assessmentId"`
	UserID         string          `json:"userId,omitempty"`
	Respondent     Respondent      `json:"respondent"`
	Answers        []Answer        `json:"answers"`
	ResultSummary  string          `json:"resultSummary"`
	DetailedResult *DetailedResult `json:"detailedResult,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
}

// DimensionScore is derived on every analysis call and only persisted inside a DetailedResult.
type DimensionScore struct {
	DimensionID    string  `json:"dimensionId"`
	DimensionName  string  `json:"dimensionName"`
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"maxScore"`
	Percentage     int     `json:"percentage"`
	Level          Level   `json:"level"`
	Interpretation string  `json:"interpretation"`
}

type Severity string

const (
	SeverityMinimal          Severity = "minimal"
	SeverityMild             Severity = "mild"
	SeverityModerate         Severity = "moderate"
	SeverityModeratelySevere Severity = "moderately-severe"
	SeveritySevere           Severity = "severe"
)

// ClinicalResult summarizes a clinical scale (PHQ-9, GAD-7) scored against official cutoffs.
// MaxScore and Percentage use the official maximum only when the questionnaire length matches.
type ClinicalResult struct {
	ScaleID          string    `json:"scaleId"`
	DimensionID      string    `json:"dimensionId"`
	DimensionName    string    `json:"dimensionName"`
	TotalScore       float64   `json:"totalScore"`
	MaxScore         float64   `json:"maxScore"`
	OfficialMaxScore float64   `json:"officialMaxScore"`
	Percentage       int       `json:"percentage"`
	Level            Level     `json:"level"`
	Severity         Severity  `json:"severity"`
	SeverityName     string    `json:"severityName"`
	SeverityNameZh   string    `json:"severityNameZh,omitempty"`
	Cutoffs          []float64 `json:"cutoffs"`
}

// DetailedResult is computed once at submission time and stored with the Submission.
type DetailedResult struct {
	OverallType       string           `json:"overallType,omitempty"`
	TypeName          string           `json:"typeName,omitempty"`
	TypeDescription   string           `json:"typeDescription,omitempty"`
	DimensionScores   []DimensionScore `json:"dimensionScores"`
	Characteristics   []string         `json:"characteristics"`
	Strengths         []string         `json:"strengths"`
	GrowthAreas       []string         `json:"growthAreas"`
	CareerSuggestions []string         `json:"careerSuggestions"`
	RelationshipTips  []string         `json:"relationshipTips"`
	ActionableAdvice  []string         `json:"actionableAdvice"`
	Clinical          *ClinicalResult  `json:"clinical,omitempty"`
	Warnings          []string         `json:"warnings,omitempty"`
}

type MembershipTier string

const (
	TierFree         MembershipTier = "free"
	TierBasic        MembershipTier = "basic"
	TierPremium      MembershipTier = "premium"
	TierProfessional MembershipTier = "professional"
)

type MembershipPlan struct {
	ID                    MembershipTier `json:"id" yaml:"id"`
	Name                  string         `json:"name" yaml:"name"`
	NameZh                string         `json:"nameZh" yaml:"name_zh"`
	Price                 float64        `json:"price" yaml:"price"`
	Period                string         `json:"period" yaml:"period"`
	Features              []string       `json:"features" yaml:"features"`
	FeaturesZh            []string       `json:"featuresZh" yaml:"features_zh"`
	MaxTestsPerMonth      int            `json:"maxTestsPerMonth" yaml:"max_tests_per_month"` // 0 means unlimited
	HasDetailedReports    bool           `json:"hasDetailedReports" yaml:"has_detailed_reports"`
	HasPremiumAssessments bool           `json:"hasPremiumAssessments" yaml:"has_premium_assessments"`
	HasExportFeature      bool           `json:"hasExportFeature" yaml:"has_export_feature"`
	HasComparisonFeature  bool           `json:"hasComparisonFeature" yaml:"has_comparison_feature"`
}

type Preferences struct {
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
	DataSharing   bool   `json:"dataSharing"`
}

// User is an account record. PassHash never leaves the service layer.
type User struct {
	ID                  string         `json:"id"`
	Email               string         `json:"email"`
	Name                string         `json:"name"`
	Avatar              string         `json:"avatar,omitempty"`
	MembershipTier      MembershipTier `json:"membershipTier"`
	MembershipExpiry    *time.Time     `json:"membershipExpiry,omitempty"`
	PassHash            []byte         `json:"-"`
	CreatedAt           time.Time      `json:"createdAt"`
	LastLoginAt         time.Time      `json:"lastLoginAt"`
	TestHistory         []string       `json:"testHistory"`
	FavoriteAssessments []string       `json:"favoriteAssessments"`
	Preferences         Preferences    `json:"preferences"`
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.PassHash = slices.Clone(u.PassHash)
	out.TestHistory = slices.Clone(u.TestHistory)
	out.FavoriteAssessments = slices.Clone(u.FavoriteAssessments)
	if u.MembershipExpiry != nil {
		t := *u.MembershipExpiry
		out.MembershipExpiry = &t
	}
	return &out
}

func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	out := *s
	if s.Answers != nil {
		out.Answers = make([]Answer, len(s.Answers))
		for i, a := range s.Answers {
			if a.Score != nil {
				v := *a.Score
				a.Score = &v
			}
			out.Answers[i] = a
		}
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	out.DetailedResult = s.DetailedResult.Clone()
	return &out
}

func (r *DetailedResult) Clone() *DetailedResult {
	if r == nil {
		return nil
	}
	out := *r
	out.DimensionScores = slices.Clone(r.DimensionScores)
	out.Characteristics = slices.Clone(r.Characteristics)
	out.Strengths = slices.Clone(r.Strengths)
	out.GrowthAreas = slices.Clone(r.GrowthAreas)
	out.CareerSuggestions = slices.Clone(r.CareerSuggestions)
	out.RelationshipTips = slices.Clone(r.RelationshipTips)
	out.ActionableAdvice = slices.Clone(r.ActionableAdvice)
	out.Warnings = slices.Clone(r.Warnings)
	if r.Clinical != nil {
		c := *r.Clinical
		c.Cutoffs = slices.Clone(r.Clinical.Cutoffs)
		out.Clinical = &c
	}
	return &out
}
