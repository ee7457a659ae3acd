// Package offer implements the commercial side of a delivery as an
// aggregate root with a fixed state machine.
//
// An Offer is the contract between a business and, once accepted, a rider.
// The package enforces role-based transition legality (only riders accept,
// only the assigned rider progresses the delivery, only the parties cancel
// or complete), terminal-state immutability, acceptance exclusivity, and an
// append-only status history that stamps one timestamp per transition.
//
// The fine-grained operational record of an accepted offer lives in the
// tracking package; the two state machines are joined by the explicit
// mapping in the domain services package.
package offer
