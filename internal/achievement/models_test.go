package achievement

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "escolar/pkg/domain-errors"
)

func TestDecodeCriterion(t *testing.T) {
	t.Run("tasks_completed", func(t *testing.T) {
		c, err := DecodeCriterion(json.RawMessage(`{"type":"tasks_completed","threshold":5}`))
		require.NoError(t, err)
		tc, ok := c.(TasksCompletedCriterion)
		require.True(t, ok)
		assert.Equal(t, 5, tc.Threshold)
	})

	t.Run("grade_average", func(t *testing.T) {
		c, err := DecodeCriterion(json.RawMessage(`{"type":"grade_average","minimum":8.5,"subject":"matemática"}`))
		require.NoError(t, err)
		ga, ok := c.(GradeAverageCriterion)
		require.True(t, ok)
		assert.Equal(t, 8.5, ga.Minimum)
		assert.Equal(t, "matemática", ga.Subject)
	})

	t.Run("unrecognized type decodes to UnknownCriterion", func(t *testing.T) {
		raw := json.RawMessage(`{"type":"streak_days","days":7}`)
		c, err := DecodeCriterion(raw)
		require.NoError(t, err)
		u, ok := c.(UnknownCriterion)
		require.True(t, ok)
		assert.Equal(t, "streak_days", u.Type)
		assert.Error(t, u.Validate())
	})

	t.Run("non-object payload is rejected", func(t *testing.T) {
		_, err := DecodeCriterion(json.RawMessage(`"tasks_completed"`))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("wrong field shape is rejected", func(t *testing.T) {
		_, err := DecodeCriterion(json.RawMessage(`{"type":"tasks_completed","threshold":"five"}`))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestCriterionValidate(t *testing.T) {
	tests := []struct {
		name      string
		criterion Criterion
		wantErr   bool
	}{
		{"tasks threshold positive", TasksCompletedCriterion{Threshold: 1}, false},
		{"tasks threshold zero", TasksCompletedCriterion{Threshold: 0}, true},
		{"tasks threshold negative", TasksCompletedCriterion{Threshold: -3}, true},
		{"grade average in range", GradeAverageCriterion{Minimum: 7, Subject: "história"}, false},
		{"grade average at upper bound", GradeAverageCriterion{Minimum: 10, Subject: "história"}, false},
		{"grade average above scale", GradeAverageCriterion{Minimum: 10.5, Subject: "história"}, true},
		{"grade average zero", GradeAverageCriterion{Minimum: 0, Subject: "história"}, true},
		{"grade average without subject", GradeAverageCriterion{Minimum: 7}, true},
		{"unknown never validates", UnknownCriterion{Type: "streak_days"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criterion.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEncodeCriterion(t *testing.T) {
	t.Run("known variants carry their tag", func(t *testing.T) {
		m := EncodeCriterion(TasksCompletedCriterion{Threshold: 3})
		assert.Equal(t, "tasks_completed", m["type"])
		assert.Equal(t, 3, m["threshold"])

		m = EncodeCriterion(GradeAverageCriterion{Minimum: 9, Subject: "física"})
		assert.Equal(t, "grade_average", m["type"])
		assert.Equal(t, 9.0, m["minimum"])
		assert.Equal(t, "física", m["subject"])
	})

	t.Run("unknown round-trips its raw payload", func(t *testing.T) {
		raw := json.RawMessage(`{"type":"streak_days","days":7}`)
		c, err := DecodeCriterion(raw)
		require.NoError(t, err)

		m := EncodeCriterion(c)
		assert.Equal(t, "streak_days", m["type"])
		assert.Equal(t, 7.0, m["days"])
	})
}
