package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var (
	ErrReportIssueCommandIsNotConstructed = errors.New(
		"ReportIssueCommand must be created via NewReportIssueCommand constructor",
	)
	ErrResolveIssueCommandIsNotConstructed = errors.New(
		"ResolveIssueCommand must be created via NewResolveIssueCommand constructor",
	)
)

// ReportIssueCommand represents a problem reported against a delivery in
// progress: package damage, an unreachable recipient, a wrong address.
type ReportIssueCommand struct { //nolint:recvcheck //using for validation
	offerID kernel.UUID
	input   tracking.IssueInput

	guard guard.ConstructorGuard
}

// NewReportIssueCommand creates a command to report a delivery issue.
// Severity may be left empty and defaults to medium.
func NewReportIssueCommand(offerID kernel.UUID, input tracking.IssueInput) (ReportIssueCommand, error) {
	cmd := ReportIssueCommand{
		input: input,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOfferID(offerID),
		cmd.validateInput(input),
	); err != nil {
		return ReportIssueCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ReportIssueCommand) Validate() error {
	return c.guard.Validate(ErrReportIssueCommandIsNotConstructed)
}

// OfferID returns the identifier of the tracked offer.
func (c ReportIssueCommand) OfferID() kernel.UUID { return c.offerID }

// Input returns the issue details.
func (c ReportIssueCommand) Input() tracking.IssueInput { return c.input }

func (c *ReportIssueCommand) setOfferID(offerID kernel.UUID) error {
	if err := offerID.Validate(); err != nil {
		return err
	}

	c.offerID = offerID
	return nil
}

func (c *ReportIssueCommand) validateInput(input tracking.IssueInput) error {
	var err error
	if input.Type == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("issue type"))
	}
	if reporterErr := input.ReportedBy.Validate(); reporterErr != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("reportedBy"))
	}
	return err
}

// ResolveIssueCommand represents closing a previously reported issue.
// The issue is addressed by its position in the session's issue ledger.
type ResolveIssueCommand struct { //nolint:recvcheck //using for validation
	offerID kernel.UUID
	index   int

	guard guard.ConstructorGuard
}

// NewResolveIssueCommand creates a command to resolve a delivery issue.
func NewResolveIssueCommand(offerID kernel.UUID, index int) (ResolveIssueCommand, error) {
	cmd := ResolveIssueCommand{
		index: index,
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setOfferID(offerID); err != nil {
		return ResolveIssueCommand{}, err
	}
	if index < 0 {
		return ResolveIssueCommand{}, errs.NewValueIsInvalidError("index")
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ResolveIssueCommand) Validate() error {
	return c.guard.Validate(ErrResolveIssueCommandIsNotConstructed)
}

// OfferID returns the identifier of the tracked offer.
func (c ResolveIssueCommand) OfferID() kernel.UUID { return c.offerID }

// Index returns the position of the issue in the session's ledger.
func (c ResolveIssueCommand) Index() int { return c.index }

func (c *ResolveIssueCommand) setOfferID(offerID kernel.UUID) error {
	if err := offerID.Validate(); err != nil {
		return err
	}

	c.offerID = offerID
	return nil
}
