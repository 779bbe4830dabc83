// Package services provides domain services that implement business logic
// spanning multiple domain entities in the order workflow system.
//
// The package includes:
//   - DeadlineCalculator: A domain service deriving SLA deadlines from store time budgets
//
// Domain services coordinate between aggregates, implementing business logic that
// doesn't naturally belong to a single aggregate root following Domain-Driven
// Design principles.
package services
