package branching

import "github.com/aretw0/cuepoint/pkg/domain"

// Tier is one score threshold of a tiered rule.
type Tier struct {
	Threshold float64
	Target    string
}

// AddRemediationRule sends learners scoring at least threshold to pass and
// everyone else to fail.
func (e *Engine) AddRemediationRule(id, scoreVar string, threshold float64, pass, fail string) error {
	return e.AddTieredRule(id, scoreVar, []Tier{{Threshold: threshold, Target: pass}}, fail)
}

// AddTieredRule checks tiers in order, so list them from the highest threshold down.
func (e *Engine) AddTieredRule(id, scoreVar string, tiers []Tier, defaultTarget string) error {
	rules := make([]domain.BranchRule, 0, len(tiers)+1)
	for _, t := range tiers {
		rules = append(rules, domain.BranchRule{
			Condition: &domain.BranchCondition{Variable: scoreVar, Operator: domain.OpGreaterEqual, Value: t.Threshold},
			Target:    t.Target,
		})
	}
	rules = append(rules, domain.BranchRule{Default: true, Target: defaultTarget})
	return e.AddRule(id, rules)
}
