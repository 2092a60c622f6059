package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"bishroute/internal/domain"
	"bishroute/internal/route"
	"bishroute/internal/streets"
	"bishroute/internal/traffic"
)

type HTTPHandler struct {
	orchestrator *route.Orchestrator
	streets      *streets.Cache
	estimator    *traffic.Estimator
}

func NewHTTPHandler(o *route.Orchestrator, c *streets.Cache, e *traffic.Estimator) *HTTPHandler {
	return &HTTPHandler{orchestrator: o, streets: c, estimator: e}
}

type StreetsResponse struct {
	Success bool                   `json:"success"`
	Count   int                    `json:"count"`
	Streets []domain.StreetTraffic `json:"streets"`
}

func (h *HTTPHandler) TrafficStreets(w http.ResponseWriter, r *http.Request) {
	annotated := h.annotatedStreets(r)

	views := make([]domain.StreetTraffic, 0, len(annotated))
	for i := range annotated {
		views = append(views, domain.TrafficView(annotated[i]))
	}

	respondJSON(w, http.StatusOK, StreetsResponse{
		Success: true,
		Count:   len(views),
		Streets: views,
	})
}

type StatisticsResponse struct {
	Success    bool               `json:"success"`
	Statistics traffic.Statistics `json:"statistics"`
}

func (h *HTTPHandler) TrafficStatistics(w http.ResponseWriter, r *http.Request) {
	annotated := h.annotatedStreets(r)

	respondJSON(w, http.StatusOK, StatisticsResponse{
		Success:    true,
		Statistics: traffic.Summarize(annotated),
	})
}

func (h *HTTPHandler) annotatedStreets(r *http.Request) []domain.StreetSegment {
	var dataset *domain.StreetDataset
	if r.URL.Query().Get("refresh") == "true" {
		dataset = h.streets.ForceRefresh()
	} else {
		dataset = h.streets.Get(r.Context())
	}
	return h.estimator.Annotate(dataset.Segments, time.Now())
}

type CalculateRequest struct {
	StartLat     float64 `json:"start_lat"`
	StartLng     float64 `json:"start_lng"`
	EndLat       float64 `json:"end_lat"`
	EndLng       float64 `json:"end_lng"`
	Alternatives int     `json:"alternatives"`
}

type CalculateResponse struct {
	Success  bool        `json:"success"`
	RouteID  string      `json:"route_id"`
	Routes   []RouteView `json:"routes"`
	Warnings []string    `json:"warnings,omitempty"`
}

type RouteView struct {
	Geometry        GeoJSONLineString `json:"geometry"`
	Distance        float64           `json:"distance"`
	Duration        float64           `json:"duration"`
	TrafficDuration float64           `json:"traffic_aware_duration_minutes"`
	MinTimeMinutes  float64           `json:"min_time_minutes"`
	MaxTimeMinutes  float64           `json:"max_time_minutes"`
	Confidence      float64           `json:"confidence"`
	AverageSpeed    float64           `json:"average_speed"`
	TrafficDelay    float64           `json:"traffic_delay_minutes"`
	Quality         domain.Quality    `json:"quality"`
	IsRecommended   bool              `json:"is_recommended"`
}

type GeoJSONLineString struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

func (h *HTTPHandler) CalculateRoute(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	start := domain.Point{Lat: req.StartLat, Lng: req.StartLng}
	end := domain.Point{Lat: req.EndLat, Lng: req.EndLng}

	result, err := h.orchestrator.Calculate(r.Context(), start, end, req.Alternatives)
	if err != nil {
		respondRouteError(w, err)
		return
	}

	views := make([]RouteView, 0, len(result.Routes))
	for _, c := range result.Routes {
		views = append(views, routeView(c))
	}

	respondJSON(w, http.StatusOK, CalculateResponse{
		Success:  true,
		RouteID:  uuid.New().String(),
		Routes:   views,
		Warnings: result.Warnings,
	})
}

func routeView(c domain.RouteCandidate) RouteView {
	coords := make([][2]float64, len(c.Geometry))
	for i, p := range c.Geometry {
		// GeoJSON is lng,lat order
		coords[i] = [2]float64{p.Lng, p.Lat}
	}
	return RouteView{
		Geometry:        GeoJSONLineString{Type: "LineString", Coordinates: coords},
		Distance:        c.DistanceMeters,
		Duration:        c.DurationSeconds,
		TrafficDuration: c.PredictedMinutes,
		MinTimeMinutes:  c.MinMinutes,
		MaxTimeMinutes:  c.MaxMinutes,
		Confidence:      c.Confidence,
		AverageSpeed:    c.AvgSpeedKmh,
		TrafficDelay:    c.DelayMinutes,
		Quality:         c.Quality,
		IsRecommended:   c.Recommended,
	}
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func respondRouteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinates):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNoRouteFound):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Reason: "no_route_found"})
	case errors.Is(err, domain.ErrUnreachablePoint):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Reason: "unreachable_point"})
	default:
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "route calculation failed"})
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
