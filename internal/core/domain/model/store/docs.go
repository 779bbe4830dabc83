// Package store provides the store configuration side of the fulfillment
// workflow: the Store entity and its per-stage TimeBudget value object.
//
// The time budget is owned by store configuration and read-only at
// alert-computation time; the escalation engine only ever sums its minutes.
package store
