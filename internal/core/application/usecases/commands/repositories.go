// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"lastmile/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OfferRepoFactory provides access to offer repository within a transaction.
	OfferRepoFactory interface {
		OfferRepository() ports.OfferRepository
	}

	// TrackingRepoFactory provides access to tracking repository within a transaction.
	TrackingRepoFactory interface {
		TrackingRepository() ports.TrackingRepository
	}

	// OfferUoW manages transactions for offer-only operations.
	// Used when commands only modify offer aggregates.
	OfferUoW interface {
		TxManager
		OfferRepoFactory
	}

	// OfferUoWFactory creates new offer unit of work instances.
	OfferUoWFactory interface {
		Create() OfferUoW
	}

	// TrackingUoW manages transactions for tracking-only operations.
	// Used when commands only modify tracking sessions.
	TrackingUoW interface {
		TxManager
		TrackingRepoFactory
	}

	// TrackingUoWFactory creates new tracking unit of work instances.
	TrackingUoWFactory interface {
		Create() TrackingUoW
	}

	// UoW manages transactions across both offer and tracking aggregates.
	// Used for commands that keep the two state machines in step.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   offerRepo := uow.OfferRepository()
	//   trackingRepo := uow.TrackingRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OfferRepoFactory
		TrackingRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)
