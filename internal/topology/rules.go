package topology

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/meshscope/backend-go/internal/domain"
)

// DefaultNamingRules returns the built-in substring rules, in match order
func DefaultNamingRules() []domain.NamingRule {
	return []domain.NamingRule{
		{Source: "api", Target: "service"},
		{Source: "web", Target: "api"},
		{Source: "service", Target: "db"},
		{Source: "frontend", Target: "api"},
		{Source: "api", Target: "auth"},
		{Source: "api", Target: "payment"},
	}
}

type namingRulesFile struct {
	Rules []domain.NamingRule `yaml:"rules"`
}

// LoadNamingRules reads a rule table from a YAML file of the form
//
//	rules:
//	  - source: api
//	    target: service
//
// An empty list is valid and disables the naming heuristic.
func LoadNamingRules(path string) ([]domain.NamingRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read naming rules: %w", err)
	}

	var f namingRulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse naming rules %s: %w", path, err)
	}

	rules := make([]domain.NamingRule, 0, len(f.Rules))
	for i, r := range f.Rules {
		r.Source = strings.TrimSpace(r.Source)
		r.Target = strings.TrimSpace(r.Target)
		if r.Source == "" || r.Target == "" {
			return nil, fmt.Errorf("naming rule %d in %s: source and target are required", i, path)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// matchRules counts the rules matching (source, target). Each match is a
// separate edge.
func matchRules(rules []domain.NamingRule, source, target string) int {
	n := 0
	for _, r := range rules {
		if strings.Contains(source, r.Source) && strings.Contains(target, r.Target) {
			n++
		}
	}
	return n
}
