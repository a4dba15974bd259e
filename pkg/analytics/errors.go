// Package analytics holds the error taxonomy and warning type shared by
// the engine's computation components.
package analytics

import (
	"fmt"
	"time"
)

// DataIntegrityError reports a dangling foreign reference or a violated
// entity invariant. It is fatal to the computation that encountered it but
// must not abort sibling per-key computations.
type DataIntegrityError struct {
	Entity string
	ID     string
	Field  string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation in %s %q (%s): %s", e.Entity, e.ID, e.Field, e.Reason)
}

// ConfigurationError reports a missing or invalid parameter required by a
// component. It is fatal before computation starts for that component.
type ConfigurationError struct {
	Component string
	Parameter string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: parameter %q %s", e.Component, e.Parameter, e.Reason)
}

// InfeasibleError reports that the route optimizer cannot satisfy all hard
// constraints for a planning date. It carries the delivery or constraint
// class that failed and is non-fatal to other planning dates in a batch.
type InfeasibleError struct {
	PlanningDate time.Time
	DeliveryID   string
	Constraint   string
	Reason       string
}

func (e *InfeasibleError) Error() string {
	if e.DeliveryID != "" {
		return fmt.Sprintf("optimization infeasible for %s: %s (delivery %s, constraint %s)",
			e.PlanningDate.Format("2006-01-02"), e.Reason, e.DeliveryID, e.Constraint)
	}
	return fmt.Sprintf("optimization infeasible for %s: %s (constraint %s)",
		e.PlanningDate.Format("2006-01-02"), e.Reason, e.Constraint)
}
