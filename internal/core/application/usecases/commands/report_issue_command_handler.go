package commands

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/tracking"
)

// ReportIssueCommandHandler handles issue reporting and resolution on
// tracking sessions.
type ReportIssueCommandHandler struct {
	uowFactory TrackingUoWFactory
}

// NewReportIssueCommandHandler creates a handler for issue operations.
func NewReportIssueCommandHandler(uowFactory TrackingUoWFactory) ReportIssueCommandHandler {
	return ReportIssueCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the issue report command.
func (h *ReportIssueCommandHandler) Handle(ctx context.Context, cmd ReportIssueCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.mutateSession(ctx, cmd.OfferID(), func(session *tracking.Session) error {
		return session.ReportIssue(cmd.Input())
	})
}

// HandleResolve processes the issue resolution command.
func (h *ReportIssueCommandHandler) HandleResolve(ctx context.Context, cmd ResolveIssueCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.mutateSession(ctx, cmd.OfferID(), func(session *tracking.Session) error {
		return session.ResolveIssue(cmd.Index())
	})
}

func (h *ReportIssueCommandHandler) mutateSession(
	ctx context.Context, offerID kernel.UUID, mutate func(*tracking.Session) error,
) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	trackingRepo := uow.TrackingRepository()
	session, err := trackingRepo.GetByOfferID(ctx, offerID)
	if err != nil {
		return err
	}

	if err = mutate(session); err != nil {
		return err
	}

	if err = trackingRepo.Update(ctx, session); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
