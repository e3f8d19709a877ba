package prompt

import (
	"fmt"
	"strings"
)

// The relaxation-priority policy is kept as ordered data rather than
// baked into prompt strings so it can be audited and tested on its own.
// Every reasoning backend is anchored to the same ladder regardless of
// its own training.

// PolicyVersion identifies the current ladder revision.
const PolicyVersion = "2025-01"

// PolicyTier groups constraints by how freely they may be relaxed.
// Tier 1 must never be relaxed; tier 5 should be relaxed first.
type PolicyTier struct {
	Tier        int
	Name        string
	Guidance    string
	Constraints []string
}

// Ladder returns the five-tier relaxation-priority policy, most
// protected tier first.
func Ladder() []PolicyTier {
	return []PolicyTier{
		{
			Tier:     1,
			Name:     "Legally mandatory",
			Guidance: "NEVER relax. Hard Luxembourg labor law requirements.",
			Constraints: []string{
				"Maximum 5 consecutive work days",
				"Minimum 2 consecutive OFF days (44h rest period)",
				"Interns must have 'cours' shift on school days",
			},
		},
		{
			Tier:     2,
			Name:     "Core legal",
			Guidance: "Avoid relaxing. Contractual and statutory commitments.",
			Constraints: []string{
				"Contract hours must be respected (varying between 32-40h/week)",
				"Holiday requests must be honored",
			},
		},
		{
			Tier:     3,
			Name:     "Operational",
			Guidance: "Relax only with explicit justification.",
			Constraints: []string{
				"No weekend work (all employees OFF on Sat/Sun)",
				"Maximum daily coverage cap",
			},
		},
		{
			Tier:     4,
			Name:     "Optimization",
			Guidance: "Often relaxable. Solver-level targets, not commitments.",
			Constraints: []string{
				"Exact minimum daily coverage on non-critical days",
				"Even distribution of shifts across the month",
			},
		},
		{
			Tier:     5,
			Name:     "Soft preferences",
			Guidance: "Relax first. Nice-to-have scheduling preferences.",
			Constraints: []string{
				"Preferred shift patterns per employee",
				"Fairness balancing of unpopular shifts",
			},
		},
	}
}

// RenderLadder formats the policy for embedding in a prompt.
func RenderLadder(tiers []PolicyTier) string {
	var b strings.Builder
	for _, t := range tiers {
		fmt.Fprintf(&b, "## Tier %d: %s\n%s\n", t.Tier, t.Name, t.Guidance)
		for _, c := range t.Constraints {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
