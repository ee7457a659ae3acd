// Package services provides domain services that orchestrate business operations
// across multiple domain entities in the delivery system. It implements logic
// that spans aggregates and does not naturally belong to a single aggregate root.
//
// The package includes:
//   - RouteEstimator: delivery time estimation and vehicle capacity checks
//   - StatusMapper: projection of fine-grained tracking statuses onto the
//     coarse offer lifecycle
package services
