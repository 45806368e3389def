package duck

import (
	"reflect"

	"duckproxy/internal/plan"
)

// PlanReport is the read-only view of a binding plan: one entry per shape
// member naming the target member it binds to.
type PlanReport = plan.Report

// MemberReport describes one member of a PlanReport.
type MemberReport = plan.MemberReport

// Plan resolves the (shape, target) pair without synthesizing it and
// reports the outcome. The error is the pair's binding error, if any.
func (c *Cache) Plan(shapeType, targetType reflect.Type) (PlanReport, error) {
	st, _, err := c.shapeStruct(shapeType)
	if err != nil {
		return PlanReport{}, err
	}

	e, _ := c.entry(plan.Key{Shape: st, Target: targetType})
	p := c.planOf(e)

	return plan.NewReport(p), p.Err()
}

// ExportPlans renders every successful plan in the cache as YAML.
func (c *Cache) ExportPlans() ([]byte, error) {
	var plans []*plan.Plan

	c.entries.Range(func(_, v any) bool {
		e := v.(*entry)
		if e.planned.Load() && e.plan.Ok() {
			plans = append(plans, e.plan)
		}

		return true
	})

	return plan.ExportYAML(plans)
}
