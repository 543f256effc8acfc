package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/saaj376/SafeTrace/pkg/datastructure"
	"github.com/saaj376/SafeTrace/pkg/fusion"
	"github.com/saaj376/SafeTrace/pkg/metrics"
	"github.com/saaj376/SafeTrace/pkg/monitor"
	"github.com/saaj376/SafeTrace/pkg/routeassembler"
	"github.com/saaj376/SafeTrace/pkg/server"
	"github.com/saaj376/SafeTrace/pkg/server/rest/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type NavigationService interface {
	PlanRoute(ctx context.Context, from, to datastructure.Coordinate, mode fusion.Mode) (routeassembler.Route, error)
	RecordVisit(ctx context.Context, lat, lon float64) error
	Health() service.HealthStatus
}

type JourneyMonitor interface {
	StartJourney(id string, mode fusion.Mode, route routeassembler.Route) (*monitor.Journey, error)
	CheckStatus(journeyID string, lat, lon float64, at time.Time) (monitor.CheckResult, error)
}

type Rerouter interface {
	Reroute(ctx context.Context, journeyID string, lat, lon float64) (routeassembler.Route, bool, error)
}

type NavigatorHandler struct {
	svc NavigationService
	mon JourneyMonitor
	rrt Rerouter
	m   *metrics.Collector
}

func NavigatorRouter(r *chi.Mux, svc NavigationService, mon JourneyMonitor, rrt Rerouter, m *metrics.Collector) {
	handler := &NavigatorHandler{svc: svc, mon: mon, rrt: rrt, m: m}

	r.Group(func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			r.Post("/route/{mode}", handler.Route)
			r.Post("/alerts/check-status", handler.CheckStatus)
			r.Post("/alerts/reroute", handler.Reroute)
			r.Post("/crowd/visit", handler.RecordVisit)
			r.Get("/health", handler.Health)
		})
	})
}

// Coord model info
//
//	@Description	a WGS84 coordinate
type Coord struct {
	Lat float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

// RouteRequest model info
//
//	@Description	request body for safety-weighted route computation
type RouteRequest struct {
	Source      Coord  `json:"source" validate:"required"`
	Destination Coord  `json:"destination" validate:"required"`
	JourneyID   string `json:"journey_id"`
}

func (s *RouteRequest) Bind(r *http.Request) error {
	if s.Source == (Coord{}) || s.Destination == (Coord{}) {
		return errors.New("source and destination are required")
	}
	return nil
}

// RouteResponse model info
//
//	@Description	response body for a computed route
type RouteResponse struct {
	Route     routeassembler.Route `json:"route"`
	JourneyID string               `json:"journey_id,omitempty"`
}

// Route
//
//	@Summary		compute the safest route between two coordinates under the given mode
//	@Description	snaps both coordinates to the road network and runs a safety-weighted shortest path
//	@Tags			navigations
//	@Param			mode	path	string			true	"weighting mode: safe | balanced | stealth | escort"
//	@Param			body	body	RouteRequest	true	"source and destination coordinates"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/api/route/{mode} [post]
//	@Success		200	{object}	RouteResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		503	{object}	ErrResponse
func (h *NavigatorHandler) Route(w http.ResponseWriter, r *http.Request) {
	mode, err := fusion.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	data := &RouteRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if rendered, ok := validateRequest(data); !ok {
		render.Render(w, r, rendered)
		return
	}

	start := time.Now()
	route, err := h.svc.PlanRoute(r.Context(),
		datastructure.NewCoordinate(data.Source.Lat, data.Source.Lon),
		datastructure.NewCoordinate(data.Destination.Lat, data.Destination.Lon),
		mode)
	if err != nil {
		if server.Code(err) == server.ErrNotFound {
			h.m.SnapFailures.Inc()
		}
		render.Render(w, r, renderServerError(err))
		return
	}
	h.m.RoutesComputed.WithLabelValues(mode.String()).Inc()
	h.m.RouteDuration.Observe(time.Since(start).Seconds())

	resp := &RouteResponse{Route: route}
	if data.JourneyID != "" {
		if _, err := h.mon.StartJourney(data.JourneyID, mode, route); err != nil {
			render.Render(w, r, renderServerError(err))
			return
		}
		h.m.ActiveJourneys.Inc()
		resp.JourneyID = data.JourneyID
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// CheckStatusRequest model info
//
//	@Description	request body for an active-journey status check
type CheckStatusRequest struct {
	JourneyID string `json:"journey_id" validate:"required"`
	Position  Coord  `json:"position" validate:"required"`
}

func (s *CheckStatusRequest) Bind(r *http.Request) error {
	if s.JourneyID == "" {
		return errors.New("journey_id is required")
	}
	return nil
}

// CheckStatus
//
//	@Summary		evaluate a traveler position against the planned route
//	@Description	reports deviation distance, upcoming hazards and cooldown-limited alerts
//	@Tags			alerts
//	@Param			body	body	CheckStatusRequest	true	"journey id and current position"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/api/alerts/check-status [post]
//	@Success		200	{object}	monitor.CheckResult
//	@Failure		404	{object}	ErrResponse
//	@Failure		409	{object}	ErrResponse
func (h *NavigatorHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	data := &CheckStatusRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if rendered, ok := validateRequest(data); !ok {
		render.Render(w, r, rendered)
		return
	}

	result, err := h.mon.CheckStatus(data.JourneyID, data.Position.Lat, data.Position.Lon, time.Now())
	if err != nil {
		render.Render(w, r, renderServerError(err))
		return
	}
	for _, alert := range result.Alerts {
		h.m.AlertsEmitted.WithLabelValues(alert.Type).Inc()
	}
	if result.Arrived {
		h.m.ActiveJourneys.Dec()
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}

// RerouteRequest model info
//
//	@Description	request body for replanning an active journey
type RerouteRequest struct {
	JourneyID string `json:"journey_id" validate:"required"`
	Position  Coord  `json:"position" validate:"required"`
}

func (s *RerouteRequest) Bind(r *http.Request) error {
	if s.JourneyID == "" {
		return errors.New("journey_id is required")
	}
	return nil
}

// RerouteResponse model info
//
//	@Description	response body for a reroute
type RerouteResponse struct {
	Route     routeassembler.Route `json:"route"`
	Installed bool                 `json:"installed"`
}

// Reroute
//
//	@Summary		replan a tracked journey from its current position
//	@Description	plans a fresh route to the original destination under the journey's mode; the latest concurrent reroute wins
//	@Tags			alerts
//	@Param			body	body	RerouteRequest	true	"journey id and current position"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/api/alerts/reroute [post]
//	@Success		200	{object}	RerouteResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		409	{object}	ErrResponse
func (h *NavigatorHandler) Reroute(w http.ResponseWriter, r *http.Request) {
	data := &RerouteRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if rendered, ok := validateRequest(data); !ok {
		render.Render(w, r, rendered)
		return
	}

	route, installed, err := h.rrt.Reroute(r.Context(), data.JourneyID, data.Position.Lat, data.Position.Lon)
	if err != nil {
		render.Render(w, r, renderServerError(err))
		return
	}
	if installed {
		h.m.Reroutes.Inc()
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &RerouteResponse{Route: route, Installed: installed})
}

// VisitRequest model info
//
//	@Description	request body for reporting a traveler position to the crowd tracker
type VisitRequest struct {
	Position Coord `json:"position" validate:"required"`
}

func (s *VisitRequest) Bind(r *http.Request) error {
	if s.Position == (Coord{}) {
		return errors.New("position is required")
	}
	return nil
}

// RecordVisit
//
//	@Summary		report a traveler position for crowd density estimation
//	@Tags			crowd
//	@Param			body	body	VisitRequest	true	"current position"
//	@Accept			application/json
//	@Router			/api/crowd/visit [post]
//	@Success		204
//	@Failure		400	{object}	ErrResponse
func (h *NavigatorHandler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	data := &VisitRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if rendered, ok := validateRequest(data); !ok {
		render.Render(w, r, rendered)
		return
	}

	if err := h.svc.RecordVisit(r.Context(), data.Position.Lat, data.Position.Lon); err != nil {
		render.Render(w, r, renderServerError(err))
		return
	}
	h.m.VisitsRecorded.Inc()
	render.NoContent(w, r)
}

// Health
//
//	@Summary		readiness of the routing engine
//	@Tags			health
//	@Produce		application/json
//	@Router			/api/health [get]
//	@Success		200	{object}	service.HealthStatus
//	@Failure		503	{object}	service.HealthStatus
func (h *NavigatorHandler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.svc.Health()
	if health.GraphLoaded {
		render.Status(r, http.StatusOK)
	} else {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, health)
}

func validateRequest(data interface{}) (render.Renderer, bool) {
	validate := validator.New()
	if err := validate.Struct(data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		return ErrValidation(err, translateError(err, trans)), false
	}
	return nil, true
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		errs = append(errs, fmt.Errorf("%s", e.Translate(trans)))
	}
	return errs
}

// ErrResponse model info
//
//	@Description	error response body
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText    string   `json:"status"`
	ErrorText     string   `json:"error,omitempty"`
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

// renderServerError maps application error codes onto HTTP statuses.
func renderServerError(err error) render.Renderer {
	status := http.StatusInternalServerError
	text := "Internal server error."
	switch server.Code(err) {
	case server.ErrBadParamInput:
		status = http.StatusBadRequest
		text = "Invalid request."
	case server.ErrNotFound:
		status = http.StatusNotFound
		text = "Not found."
	case server.ErrConflict:
		status = http.StatusConflict
		text = "Conflict."
	case server.ErrServiceUnavailable:
		status = http.StatusServiceUnavailable
		text = "Service unavailable."
	case server.ErrTimeout:
		status = http.StatusGatewayTimeout
		text = "Timed out."
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     text,
		ErrorText:      err.Error(),
	}
}
