package transform

import (
	"fmt"

	"github.com/rgehrsitz/btcgo/internal/domain"
)

// PlanTransform defines the interface for all retirement plan transformations.
// Transforms are composable operations that modify a plan in predictable ways,
// which the comparison and break-even tools build on.
type PlanTransform interface {
	// Apply returns a modified copy of base. base itself is never changed.
	Apply(base *domain.RetirementPlan) (*domain.RetirementPlan, error)

	// Name returns a short identifier for this transform (e.g., "postpone_retirement").
	Name() string

	// Description returns a human-readable description of what this transform does.
	Description() string

	// Validate checks the transform parameters against base without applying it.
	Validate(base *domain.RetirementPlan) error
}

// ApplyTransforms applies a sequence of transforms to a base plan.
// Transforms are applied in order, with each transform receiving the output of the previous one.
func ApplyTransforms(base *domain.RetirementPlan, transforms []PlanTransform) (*domain.RetirementPlan, error) {
	if base == nil {
		return nil, fmt.Errorf("base plan cannot be nil")
	}

	current := base.DeepCopy()
	for i, transform := range transforms {
		if transform == nil {
			return nil, fmt.Errorf("transform at index %d is nil", i)
		}

		if err := transform.Validate(current); err != nil {
			return nil, fmt.Errorf("transform %s validation failed: %w", transform.Name(), err)
		}

		next, err := transform.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("transform %s failed: %w", transform.Name(), err)
		}
		current = next
	}

	return current, nil
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}

func requirePlan(name string, base *domain.RetirementPlan) error {
	if base == nil {
		return NewTransformError(name, "validate", "base plan cannot be nil", nil)
	}
	return nil
}
