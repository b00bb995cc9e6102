// Package achievement is a thin domain module for student achievements. It
// exists on two grounds: achievement criteria are modeled as tagged variants
// instead of free-form JSON maps, and every mutation routes through the
// context-bound store handle, which is what makes it audited.
package achievement

import (
	"encoding/json"

	dErrors "escolar/pkg/domain-errors"
)

// Criterion is the condition under which an achievement is awarded. The set
// of known shapes is closed per release; payloads with an unrecognized type
// tag decode to UnknownCriterion instead of being silently trusted.
type Criterion interface {
	// Validate checks the variant's own invariants.
	Validate() error
	criterionType() string
}

const (
	typeTasksCompleted = "tasks_completed"
	typeGradeAverage   = "grade_average"
)

// TasksCompletedCriterion awards when a student completes a number of tasks.
type TasksCompletedCriterion struct {
	Threshold int `json:"threshold"`
}

func (c TasksCompletedCriterion) criterionType() string { return typeTasksCompleted }

func (c TasksCompletedCriterion) Validate() error {
	if c.Threshold <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "tasks_completed criterion requires a positive threshold")
	}
	return nil
}

// GradeAverageCriterion awards when a student's average in a subject reaches
// a minimum.
type GradeAverageCriterion struct {
	Minimum float64 `json:"minimum"`
	Subject string  `json:"subject"`
}

func (c GradeAverageCriterion) criterionType() string { return typeGradeAverage }

func (c GradeAverageCriterion) Validate() error {
	if c.Minimum <= 0 || c.Minimum > 10 {
		return dErrors.New(dErrors.CodeBadRequest, "grade_average criterion minimum must be in (0, 10]")
	}
	if c.Subject == "" {
		return dErrors.New(dErrors.CodeBadRequest, "grade_average criterion requires a subject")
	}
	return nil
}

// UnknownCriterion preserves a payload whose type tag this release does not
// know. It round-trips untouched but never validates, so it cannot be used to
// create or update an achievement.
type UnknownCriterion struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

func (c UnknownCriterion) criterionType() string { return c.Type }

func (c UnknownCriterion) Validate() error {
	return dErrors.New(dErrors.CodeBadRequest, "unknown criterion type: "+c.Type)
}

// DecodeCriterion parses a raw criterion document by its "type" tag.
func DecodeCriterion(raw json.RawMessage) (Criterion, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "criterion is not a JSON object")
	}

	switch probe.Type {
	case typeTasksCompleted:
		var c TasksCompletedCriterion
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed tasks_completed criterion")
		}
		return c, nil
	case typeGradeAverage:
		var c GradeAverageCriterion
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed grade_average criterion")
		}
		return c, nil
	default:
		return UnknownCriterion{Type: probe.Type, Raw: raw}, nil
	}
}

// EncodeCriterion renders a criterion as the map shape stored on the record.
func EncodeCriterion(c Criterion) map[string]any {
	switch v := c.(type) {
	case TasksCompletedCriterion:
		return map[string]any{"type": typeTasksCompleted, "threshold": v.Threshold}
	case GradeAverageCriterion:
		return map[string]any{"type": typeGradeAverage, "minimum": v.Minimum, "subject": v.Subject}
	default:
		var raw map[string]any
		if u, ok := c.(UnknownCriterion); ok && json.Unmarshal(u.Raw, &raw) == nil {
			return raw
		}
		return map[string]any{"type": c.criterionType()}
	}
}
