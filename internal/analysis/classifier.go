package analysis

import (
	"strings"

	"github.com/soaringjerry/mindscope/internal/models"
)

// Family identifies which classifier and narrative builder handle an assessment.
type Family string

const (
	FamilyGeneric Family = "generic"
	FamilyMBTI    Family = "mbti"
	FamilyBigFive Family = "big-five"
	FamilyDISC    Family = "disc"
	FamilyPHQ9    Family = "phq9"
	FamilyGAD7    Family = "gad7"
)

// Input is what a classifier sees. Scores is the generic per-dimension result and must not be mutated.
type Input struct {
	Assessment *models.Assessment
	Answers    []models.Answer
	Scores     []models.DimensionScore
	Tables     *Tables
}

// Classification is a classifier's verdict. A non-nil Scores replaces the generic scores.
type Classification struct {
	OverallType     string
	TypeName        string
	TypeDescription string
	Profile         *Profile
	Scores          []models.DimensionScore
	Clinical        *models.ClinicalResult
	Band            *SeverityBand
	Warnings        []string
}

// Narrative holds the list fields of a detailed result.
type Narrative struct {
	Characteristics   []string
	Strengths         []string
	GrowthAreas       []string
	CareerSuggestions []string
	RelationshipTips  []string
	ActionableAdvice  []string
}

type Classifier interface {
	Classify(in *Input) Classification
}

type Narrator interface {
	Narrate(in *Input, c *Classification) Narrative
}

type ClassifierFunc func(in *Input) Classification

func (f ClassifierFunc) Classify(in *Input) Classification { return f(in) }

type NarratorFunc func(in *Input, c *Classification) Narrative

func (f NarratorFunc) Narrate(in *Input, c *Classification) Narrative { return f(in, c) }

// Instrument pairs a classifier with the narrative builder for its family.
type Instrument struct {
	Family     Family
	Classifier Classifier
	Narrator   Narrator
}

// Registry resolves assessments to instruments. The zero value is not usable; use NewRegistry.
type Registry struct {
	instruments map[Family]Instrument
}

// NewRegistry builds a registry. The generic instrument is always present.
func NewRegistry(instruments ...Instrument) *Registry {
	r := &Registry{instruments: make(map[Family]Instrument, len(instruments)+1)}
	r.Register(genericInstrument())
	for _, in := range instruments {
		r.Register(in)
	}
	return r
}

// Register adds or replaces the instrument for its family.
func (r *Registry) Register(in Instrument) {
	if in.Classifier == nil {
		in.Classifier = ClassifierFunc(classifyGeneric)
	}
	if in.Narrator == nil {
		in.Narrator = NarratorFunc(narrateGeneric)
	}
	r.instruments[in.Family] = in
}

// DefaultRegistry wires every built-in instrument, with one clinical instrument per clinical table entry.
func DefaultRegistry(t *Tables) *Registry {
	r := NewRegistry(
		Instrument{Family: FamilyMBTI, Classifier: ClassifierFunc(classifyMBTI), Narrator: NarratorFunc(narrateMBTI)},
		Instrument{Family: FamilyDISC, Classifier: ClassifierFunc(classifyDISC), Narrator: NarratorFunc(narrateDISC)},
		Instrument{Family: FamilyBigFive, Classifier: ClassifierFunc(classifyGeneric), Narrator: NarratorFunc(narrateBigFive)},
	)
	for scaleID := range t.Clinical {
		r.Register(ClinicalInstrument(scaleID))
	}
	return r
}

// Resolve picks the instrument for an assessment: the explicit instrument tag first, then the
// assessment id, then the generic instrument.
func (r *Registry) Resolve(a *models.Assessment) Instrument {
	if a != nil {
		if tag := Family(strings.ToLower(strings.TrimSpace(a.Instrument))); tag != "" {
			if in, ok := r.instruments[tag]; ok {
				return in
			}
		}
		if in, ok := r.instruments[Family(a.ID)]; ok {
			return in
		}
	}
	return r.instruments[FamilyGeneric]
}

func genericInstrument() Instrument {
	return Instrument{
		Family:     FamilyGeneric,
		Classifier: ClassifierFunc(classifyGeneric),
		Narrator:   NarratorFunc(narrateGeneric),
	}
}

func classifyGeneric(*Input) Classification { return Classification{} }

// narrateGeneric describes each high and low dimension using its interpretation.
func narrateGeneric(in *Input, c *Classification) Narrative {
	scores := in.Scores
	if c.Scores != nil {
		scores = c.Scores
	}
	var n Narrative
	for _, s := range scores {
		switch s.Level {
		case models.LevelHigh:
			n.Characteristics = append(n.Characteristics, "High "+s.DimensionName+": "+s.Interpretation)
		case models.LevelLow:
			n.Characteristics = append(n.Characteristics, "Low "+s.DimensionName+": "+s.Interpretation)
		}
	}
	return n
}
