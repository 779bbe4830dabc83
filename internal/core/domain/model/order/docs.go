// Package order provides domain entities and business logic for the order
// fulfillment workflow. It implements the Order aggregate root with stage
// transitions, an append-only workflow history, and SLA alert escalation.
//
// The package includes:
//   - Order: The aggregate root that manages order identity, the current flow, and lifecycle
//   - Stage: A state machine that enforces the fixed fulfillment sequence
//   - AlertStatus: The monotonic Green/Yellow/Red escalation level of the current stage
//
// Key business rules:
//   - Stages move forward only: AwaitingConfirmation -> InProduction -> OutForDelivery -> Delivered
//   - Any non-terminal order can be cancelled; Delivered and Cancelled are terminal
//   - Terminal orders are immutable
//   - A transition must name the stage the caller observed and is rejected on mismatch
//   - The alert status escalates monotonically within a stage and resets to Green on every stage change
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
