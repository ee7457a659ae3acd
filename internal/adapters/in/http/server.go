// Package http exposes the delivery lifecycle over a thin echo REST surface.
// Handlers translate wire DTOs into commands and queries; no business rules
// live here.
package http

import (
	"errors"
	"net/http"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Handlers bundles the use case handlers the server dispatches to.
type Handlers struct {
	CreateOffer     commands.CreateOfferCommandHandler
	AcceptOffer     commands.AcceptOfferCommandHandler
	UpdateStatus    commands.UpdateOfferStatusCommandHandler
	AddEvent        commands.AddTrackingEventCommandHandler
	RecordLocation  commands.RecordLocationCommandHandler
	AddAttempt      commands.AddAttemptCommandHandler
	ReportIssue     commands.ReportIssueCommandHandler
	ConfirmDelivery commands.ConfirmDeliveryCommandHandler
	RefreshEstimate commands.RefreshEstimateCommandHandler

	OpenOffers       queries.GetOpenOffersQueryHandler
	ActiveDeliveries queries.GetActiveDeliveriesQueryHandler
}

// Server coordinates between HTTP requests and application use cases.
type Server struct {
	handlers Handlers

	// trackingReader serves the read-only tracking feed endpoints.
	trackingReader ports.TrackingRepository
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(handlers Handlers, trackingReader ports.TrackingRepository) *Server {
	return &Server{
		handlers:       handlers,
		trackingReader: trackingReader,
	}
}

// RegisterRoutes mounts the API under /api/v1.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/offers", s.CreateOffer)
	api.GET("/offers/open", s.GetOpenOffers)
	api.POST("/offers/:id/accept", s.AcceptOffer)
	api.POST("/offers/:id/status", s.UpdateOfferStatus)

	api.POST("/offers/:id/events", s.AddTrackingEvent)
	api.POST("/offers/:id/location", s.RecordLocation)
	api.POST("/offers/:id/attempts/pickup", s.AddPickupAttempt)
	api.POST("/offers/:id/attempts/delivery", s.AddDeliveryAttempt)
	api.POST("/offers/:id/issues", s.ReportIssue)
	api.POST("/offers/:id/issues/:index/resolve", s.ResolveIssue)
	api.POST("/offers/:id/confirmation", s.ConfirmDelivery)
	api.POST("/offers/:id/estimate", s.RefreshEstimate)

	api.GET("/offers/:id/tracking", s.GetTracking)
	api.GET("/offers/:id/tracking/detailed", s.GetDetailedTracking)
	api.GET("/deliveries/active", s.GetActiveDeliveries)
}

// CreateOffer handles POST /api/v1/offers - publishes a new offer.
func (s *Server) CreateOffer(ctx echo.Context) error {
	var body NewOffer
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	businessID, err := kernel.UUIDFromString(body.BusinessID)
	if err != nil {
		return badRequest(ctx, "Invalid business id: "+err.Error())
	}

	pickup, err := waypointFromWire(body.Pickup)
	if err != nil {
		return badRequest(ctx, "Invalid pickup: "+err.Error())
	}
	delivery, err := waypointFromWire(body.Delivery)
	if err != nil {
		return badRequest(ctx, "Invalid delivery: "+err.Error())
	}

	pkg, err := offer.NewPackage(
		body.Package.WeightKg, body.Package.LengthCm, body.Package.WidthCm,
		body.Package.HeightCm, body.Package.Fragile,
	)
	if err != nil {
		return badRequest(ctx, "Invalid package: "+err.Error())
	}
	payment, err := offer.NewPayment(body.Payment.Amount, body.Payment.Currency, body.Payment.Method)
	if err != nil {
		return badRequest(ctx, "Invalid payment: "+err.Error())
	}

	offerID := kernel.NewUUID()
	cmd, err := commands.NewCreateOfferCommand(offerID, businessID, pickup, delivery, pkg, payment)
	if err != nil {
		return badRequest(ctx, "Invalid offer data: "+err.Error())
	}

	if handleErr := s.handlers.CreateOffer.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.JSON(http.StatusCreated, OfferCreated{ID: offerID.String()})
}

// GetOpenOffers handles GET /api/v1/offers/open - the rider-facing board.
func (s *Server) GetOpenOffers(ctx echo.Context) error {
	query := queries.NewGetOpenOffersQuery()

	offers, err := s.handlers.OpenOffers.Handle(ctx.Request().Context(), query)
	if err != nil {
		return internalError(ctx, "Failed to retrieve open offers")
	}

	response := make([]OpenOffer, len(offers))
	for i, row := range offers {
		response[i] = OpenOffer{
			ID:              row.ID.String(),
			BusinessID:      row.BusinessID.String(),
			PickupAddress:   row.PickupAddress,
			DeliveryAddress: row.DeliveryAddress,
			WeightKg:        row.WeightKg,
			Amount:          row.Amount,
			Currency:        row.Currency,
			CreatedAt:       row.CreatedAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// AcceptOffer handles POST /api/v1/offers/:id/accept - a rider claims an offer.
func (s *Server) AcceptOffer(ctx echo.Context) error {
	offerID, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	var body AcceptOffer
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	riderID, err := kernel.UUIDFromString(body.RiderID)
	if err != nil {
		return badRequest(ctx, "Invalid rider id: "+err.Error())
	}

	cmd, err := commands.NewAcceptOfferCommand(offerID, riderID, services.VehicleType(body.Vehicle))
	if err != nil {
		return badRequest(ctx, "Invalid acceptance data: "+err.Error())
	}

	if handleErr := s.handlers.AcceptOffer.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// UpdateOfferStatus handles POST /api/v1/offers/:id/status - a lifecycle transition.
func (s *Server) UpdateOfferStatus(ctx echo.Context) error {
	offerID, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	var body StatusUpdate
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	actorID, err := kernel.UUIDFromString(body.ActorID)
	if err != nil {
		return badRequest(ctx, "Invalid actor id: "+err.Error())
	}
	target, err := offer.StatusFromString(body.Status)
	if err != nil {
		return badRequest(ctx, "Invalid status: "+err.Error())
	}
	location, err := geoPointFromWire(body.Location)
	if err != nil {
		return badRequest(ctx, "Invalid location: "+err.Error())
	}

	cmd, err := commands.NewUpdateOfferStatusCommand(offerID, actorID, target, body.Notes, location)
	if err != nil {
		return badRequest(ctx, "Invalid status update: "+err.Error())
	}

	if handleErr := s.handlers.UpdateStatus.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AddTrackingEvent handles POST /api/v1/offers/:id/events - a rider progress event.
func (s *Server) AddTrackingEvent(ctx echo.Context) error {
	offerID, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	var body TrackingEvent
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	location, err := geoPointFromWire(body.Location)
	if err != nil {
		return badRequest(ctx, "Invalid location: "+err.Error())
	}

	cmd, err := commands.NewAddTrackingEventCommand(
		offerID, tracking.EventType(body.Type), body.Notes, location, body.Metadata,
	)
	if err != nil {
		return badRequest(ctx, "Invalid event: "+err.Error())
	}

	if handleErr := s.handlers.AddEvent.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RecordLocation handles POST /api/v1/offers/:id/location - a GPS fix.
func (s *Server) RecordLocation(ctx echo.Context) error {
	offerID, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	var body LocationFix
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	point, err := kernel.NewGeoPoint(body.Latitude, body.Longitude)
	if err != nil {
		return badRequest(ctx, "Invalid coordinates: "+err.Error())
	}

	cmd, err := commands.NewRecordLocationCommand(offerID, point, tracking.LocationUpdate{
		AccuracyMeters: body.AccuracyMeters,
		SpeedKmh:       body.SpeedKmh,
		BearingDegrees: body.BearingDegrees,
	})
	if err != nil {
		return badRequest(ctx, "Invalid location update: "+err.Error())
	}

	if handleErr := s.handlers.RecordLocation.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AddPickupAttempt handles POST /api/v1/offers/:id/attempts/pickup.
func (s *Server) AddPickupAttempt(ctx echo.Context) error {
	offerID, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	var body Attempt
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewAddPickupAttemptCommand(offerID, body.toInput())
	if err != nil {
		return badRequest(ctx, "Invalid attempt: "+err.Error())
	}

	if handleErr := s.handlers.AddAttempt.HandlePickup(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AddDeliveryAttempt handles POST /api/v1/offers/:id/attempts/delivery.
func (s *Server) AddDeliveryAttempt(ctx echo.Context) error {
	offerID, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	var body Attempt
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewAddDeliveryAttemptCommand(offerID, body.toInput())
	if err != nil {
		return badRequest(ctx, "Invalid attempt: "+err.Error())
	}

	if handleErr := s.handlers.AddAttempt.HandleDelivery(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ReportIssue handles POST /api/v1/offers/:id/issues.
func (s *Server) ReportIssue(ctx echo.Context) error {
	offerID, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	var body NewIssue
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	reporter, err := kernel.UUIDFromString(body.ReportedBy)
	if err != nil {
		return badRequest(ctx, "Invalid reporter id: "+err.Error())
	}

	cmd, err := commands.NewReportIssueCommand(offerID, tracking.IssueInput{
		Type:        body.Type,
		Description: body.Description,
		Severity:    tracking.IssueSeverity(body.Severity),
		ReportedBy:  reporter,
	})
	if err != nil {
		return badRequest(ctx, "Invalid issue: "+err.Error())
	}

	if handleErr := s.handlers.ReportIssue.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ResolveIssue handles POST /api/v1/offers/:id/issues/:index/resolve.
func (s *Server) ResolveIssue(ctx echo.Context) error {
	offerID, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	var index int
	if err = echo.PathParamsBinder(ctx).Int("index", &index).BindError(); err != nil {
		return badRequest(ctx, "Invalid issue index")
	}

	cmd, err := commands.NewResolveIssueCommand(offerID, index)
	if err != nil {
		return badRequest(ctx, "Invalid resolution: "+err.Error())
	}

	if handleErr := s.handlers.ReportIssue.HandleResolve(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ConfirmDelivery handles POST /api/v1/offers/:id/confirmation.
func (s *Server) ConfirmDelivery(ctx echo.Context) error {
	offerID, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	var body Confirmation
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	location, err := geoPointFromWire(body.Location)
	if err != nil {
		return badRequest(ctx, "Invalid location: "+err.Error())
	}

	cmd, err := commands.NewConfirmDeliveryCommand(offerID, tracking.ConfirmationInput{
		Type:     tracking.ConfirmationType(body.Type),
		Payload:  body.Payload,
		Location: location,
		Notes:    body.Notes,
	})
	if err != nil {
		return badRequest(ctx, "Invalid confirmation: "+err.Error())
	}

	if handleErr := s.handlers.ConfirmDelivery.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RefreshEstimate handles POST /api/v1/offers/:id/estimate.
func (s *Server) RefreshEstimate(ctx echo.Context) error {
	offerID, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	var body EstimateRefresh
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewRefreshEstimateCommand(
		offerID, services.VehicleType(body.Vehicle), tracking.EstimateFactors{
			Traffic:   tracking.TrafficLevel(body.Traffic),
			Weather:   tracking.WeatherCondition(body.Weather),
			TimeOfDay: tracking.TimeOfDay(body.TimeOfDay),
		},
	)
	if err != nil {
		return badRequest(ctx, "Invalid estimate request: "+err.Error())
	}

	if handleErr := s.handlers.RefreshEstimate.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetTracking handles GET /api/v1/offers/:id/tracking - the customer feed.
func (s *Server) GetTracking(ctx echo.Context) error {
	offerID, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	session, err := s.trackingReader.GetByOfferID(ctx.Request().Context(), offerID)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, trackingFeedToWire(session.TrackingData()))
}

// GetDetailedTracking handles GET /api/v1/offers/:id/tracking/detailed - the operator feed.
func (s *Server) GetDetailedTracking(ctx echo.Context) error {
	offerID, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid offer id")
	}

	session, err := s.trackingReader.GetByOfferID(ctx.Request().Context(), offerID)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, detailedFeedToWire(session.DetailedTracking()))
}

// GetActiveDeliveries handles GET /api/v1/deliveries/active - the dispatcher board.
func (s *Server) GetActiveDeliveries(ctx echo.Context) error {
	query := queries.NewGetActiveDeliveriesQuery()

	deliveries, err := s.handlers.ActiveDeliveries.Handle(ctx.Request().Context(), query)
	if err != nil {
		return internalError(ctx, "Failed to retrieve active deliveries")
	}

	response := make([]ActiveDelivery, len(deliveries))
	for i, row := range deliveries {
		response[i] = ActiveDelivery{
			SessionID:       row.SessionID.String(),
			OfferID:         row.OfferID.String(),
			RiderID:         row.RiderID.String(),
			Status:          row.Status,
			Phase:           row.Phase,
			Progress:        row.Progress,
			DeliveryAddress: row.DeliveryAddress,
			TotalDistanceM:  row.TotalDistanceM,
			LastUpdatedAt:   row.LastUpdatedAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

func pathID(ctx echo.Context) (kernel.UUID, error) {
	return kernel.UUIDFromString(ctx.Param("id"))
}

func waypointFromWire(w Waypoint) (offer.Waypoint, error) {
	point, err := kernel.NewGeoPoint(w.Latitude, w.Longitude)
	if err != nil {
		return offer.Waypoint{}, err
	}
	return offer.NewWaypoint(w.Address, point, w.ContactName, w.ContactPhone, w.WindowFrom, w.WindowTo)
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

func internalError(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusInternalServerError, Error{
		Code:    http.StatusInternalServerError,
		Message: message,
	})
}

// writeError maps application and domain errors onto HTTP statuses.
func writeError(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ports.ErrOfferAlreadyAccepted),
		errors.Is(err, offer.ErrAcceptedByAnotherRider),
		errors.Is(err, commands.ErrVehicleCannotCarryPackage),
		errors.Is(err, tracking.ErrSessionArchived),
		errors.Is(err, tracking.ErrNotInDeliveryPhase):
		code = http.StatusConflict
	case errors.Is(err, offer.ErrOnlyRidersCanAccept),
		errors.Is(err, offer.ErrOnlyAssignedRiderCanProgress),
		errors.Is(err, offer.ErrOnlyPartiesCanComplete),
		errors.Is(err, offer.ErrOnlyPartiesCanCancel):
		code = http.StatusForbidden
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, tracking.ErrIssueNotFound):
		code = http.StatusBadRequest
	}

	return ctx.JSON(code, Error{
		Code:    code,
		Message: err.Error(),
	})
}
