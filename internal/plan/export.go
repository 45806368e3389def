package plan

import (
	"sort"

	"gopkg.in/yaml.v3"

	"duckproxy/internal/diagnostic"
)

// Report is the read-only, serializable view of a plan.
type Report struct {
	Shape       string         `yaml:"shape"`
	Target      string         `yaml:"target"`
	Kind        string         `yaml:"kind,omitempty"`
	Members     []MemberReport `yaml:"members,omitempty"`
	Diagnostics []string       `yaml:"diagnostics,omitempty"`
}

// MemberReport describes one binding.
type MemberReport struct {
	Name          string `yaml:"name"`
	Requirement   string `yaml:"requirement"`
	Binding       string `yaml:"binding"`
	Target        string `yaml:"target,omitempty"`
	Compatibility string `yaml:"compatibility,omitempty"`
	Chained       string `yaml:"chained,omitempty"`
	Explanation   string `yaml:"explanation,omitempty"`
}

// NewReport builds the report of p.
func NewReport(p *Plan) Report {
	r := Report{
		Shape:  typeName(p.Key.Shape),
		Target: typeName(p.Key.Target),
	}

	if p.Shape != nil {
		r.Kind = p.Shape.Kind.String()
	}

	for i := range p.Bindings {
		r.Members = append(r.Members, exportBinding(&p.Bindings[i]))
	}

	for _, group := range [][]string{
		diagStrings(p.Diagnostics.Errors),
		diagStrings(p.Diagnostics.Warnings),
		diagStrings(p.Diagnostics.Infos),
	} {
		r.Diagnostics = append(r.Diagnostics, group...)
	}

	return r
}

func exportBinding(b *Binding) MemberReport {
	mr := MemberReport{
		Name:        b.Requirement.Name,
		Requirement: b.Requirement.Signature(),
		Binding:     b.Kind.String(),
		Target:      b.Target(),
		Explanation: b.Explanation,
	}

	if b.Kind != BindDefault && b.Kind != BindFiltered {
		mr.Compatibility = b.Compatibility.String()
	}

	if b.Nested != nil {
		mr.Chained = b.Nested.Shape.String() + "<-" + b.Nested.Static.String()
		if b.Nested.Deferred {
			mr.Chained += " (resolved on access)"
		}
	}

	return mr
}

// ExportYAML renders the reports of plans, ordered by pair, as YAML.
func ExportYAML(plans []*Plan) ([]byte, error) {
	reports := make([]Report, 0, len(plans))
	for _, p := range plans {
		reports = append(reports, NewReport(p))
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Shape != reports[j].Shape {
			return reports[i].Shape < reports[j].Shape
		}

		return reports[i].Target < reports[j].Target
	})

	return yaml.Marshal(struct {
		Plans []Report `yaml:"plans"`
	}{Plans: reports})
}

func diagStrings(ds []diagnostic.Diagnostic) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		d.TypePair = ""
		out = append(out, d.String())
	}

	return out
}
