package services

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/mindscope/internal/models"
)

//go:embed membership.yaml
var membershipYAML []byte

var knownTiers = []models.MembershipTier{
	models.TierFree, models.TierBasic, models.TierPremium, models.TierProfessional,
}

// Membership answers entitlement questions from a fixed four-tier plan table.
type Membership struct {
	plans []models.MembershipPlan
}

var (
	membershipOnce    sync.Once
	defaultMembership *Membership
)

// DefaultMembership returns the embedded plan table, parsed once.
func DefaultMembership() *Membership {
	membershipOnce.Do(func() {
		m, err := ParseMembership(membershipYAML)
		if err != nil {
			panic(fmt.Sprintf("services: embedded membership plans invalid: %v", err))
		}
		defaultMembership = m
	})
	return defaultMembership
}

func ParseMembership(raw []byte) (*Membership, error) {
	var doc struct {
		Plans []models.MembershipPlan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode membership plans: %w", err)
	}
	if len(doc.Plans) != len(knownTiers) {
		return nil, fmt.Errorf("membership plans: want %d tiers, got %d", len(knownTiers), len(doc.Plans))
	}
	for i, tier := range knownTiers {
		if doc.Plans[i].ID != tier {
			return nil, fmt.Errorf("membership plans: entry %d is %q, want %q", i, doc.Plans[i].ID, tier)
		}
	}
	return &Membership{plans: doc.Plans}, nil
}

// IsKnownTier reports whether tier is one of the four plan ids.
func IsKnownTier(tier models.MembershipTier) bool {
	return slices.Contains(knownTiers, tier)
}

// Plans returns a copy of every plan in tier order.
func (m *Membership) Plans() []models.MembershipPlan {
	out := make([]models.MembershipPlan, len(m.plans))
	for i, p := range m.plans {
		out[i] = clonePlan(p)
	}
	return out
}

// PlanFor returns the plan for tier. Unknown tiers get the free plan.
func (m *Membership) PlanFor(tier models.MembershipTier) models.MembershipPlan {
	for _, p := range m.plans {
		if p.ID == tier {
			return clonePlan(p)
		}
	}
	return clonePlan(m.plans[0])
}

func (m *Membership) CanAccessAssessment(tier models.MembershipTier, premium bool) bool {
	if !premium {
		return true
	}
	return m.PlanFor(tier).HasPremiumAssessments
}

func (m *Membership) CanViewDetailedReport(tier models.MembershipTier) bool {
	return m.PlanFor(tier).HasDetailedReports
}

func (m *Membership) CanExport(tier models.MembershipTier) bool {
	return m.PlanFor(tier).HasExportFeature
}

func clonePlan(p models.MembershipPlan) models.MembershipPlan {
	p.Features = slices.Clone(p.Features)
	p.FeaturesZh = slices.Clone(p.FeaturesZh)
	return p
}
