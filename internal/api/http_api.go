package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/abelzeko/angler-bot/internal/usecases"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// HTTPServer exposes the use cases as a JSON API for mobile clients
type HTTPServer struct {
	useCase *usecases.AnglerUseCase
	router  *mux.Router
}

// NewHTTPServer creates the API and registers its routes
func NewHTTPServer(useCase *usecases.AnglerUseCase) *HTTPServer {
	s := &HTTPServer{useCase: useCase, router: mux.NewRouter()}
	s.routes()
	return s
}

// Router returns the HTTP handler
func (s *HTTPServer) Router() http.Handler {
	return s.router
}

func (s *HTTPServer) routes() {
	r := s.router
	r.Use(requestLogger)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/locations", s.listLocations).Methods(http.MethodGet)
	api.HandleFunc("/locations", s.addLocation).Methods(http.MethodPost)
	api.HandleFunc("/locations/nmea", s.addLocationNMEA).Methods(http.MethodPost)
	api.HandleFunc("/locations/{id}", s.getLocation).Methods(http.MethodGet)
	api.HandleFunc("/locations/{id}", s.deleteLocation).Methods(http.MethodDelete)
	api.HandleFunc("/locations/{id}/weather", s.getWeather).Methods(http.MethodGet)
	api.HandleFunc("/locations/{id}/tide", s.getTide).Methods(http.MethodGet)
	api.HandleFunc("/locations/{id}/conditions", s.getConditions).Methods(http.MethodGet)
	api.HandleFunc("/locations/{id}/recommendations", s.getRecommendations).Methods(http.MethodGet)

	api.HandleFunc("/equipment", s.listEquipment).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{id}", s.putEquipment).Methods(http.MethodPut)

	api.HandleFunc("/users/{id}/preferences", s.getPreferences).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/preferences", s.putPreferences).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}/favorites/{itemID}", s.addFavorite).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/favorites/{itemID}", s.removeFavorite).Methods(http.MethodDelete)
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) listLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.useCase.ListLocations()
	if err != nil {
		writeError(w, err)
		return
	}
	if locations == nil {
		locations = []entities.Location{}
	}
	writeJSON(w, http.StatusOK, locations)
}

func (s *HTTPServer) addLocation(w http.ResponseWriter, r *http.Request) {
	var req usecases.AddLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.createLocation(w, r, req)
}

func (s *HTTPServer) addLocationNMEA(w http.ResponseWriter, r *http.Request) {
	var req usecases.AddLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.NMEASentence) == "" {
		writeError(w, entities.NewValidationError("sentence is required"))
		return
	}
	req.Latitude, req.Longitude = nil, nil
	s.createLocation(w, r, req)
}

func (s *HTTPServer) createLocation(w http.ResponseWriter, r *http.Request, req usecases.AddLocationRequest) {
	loc, err := s.useCase.AddLocation(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

func (s *HTTPServer) getLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := s.useCase.GetLocation(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (s *HTTPServer) deleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := s.useCase.DeleteLocation(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) getWeather(w http.ResponseWriter, r *http.Request) {
	loc, err := s.useCase.GetLocation(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.useCase.GetWeather(r.Context(), loc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) getTide(w http.ResponseWriter, r *http.Request) {
	loc, err := s.useCase.GetLocation(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.useCase.GetTide(r.Context(), loc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) getConditions(w http.ResponseWriter, r *http.Request) {
	loc, err := s.useCase.GetLocation(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	in, err := conditionInputs(r)
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := s.useCase.GetConditions(r.Context(), loc, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *HTTPServer) getRecommendations(w http.ResponseWriter, r *http.Request) {
	loc, err := s.useCase.GetLocation(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	in, err := conditionInputs(r)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	user := q.Get("user")
	if user == "" {
		writeError(w, entities.NewValidationError("user query parameter is required"))
		return
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit <= 0 {
			writeError(w, entities.NewValidationError("limit must be a positive integer"))
			return
		}
	}

	report, err := s.useCase.GetRecommendations(r.Context(), loc, user, in, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *HTTPServer) listEquipment(w http.ResponseWriter, r *http.Request) {
	items, err := s.useCase.ListEquipment()
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []entities.EquipmentItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) putEquipment(w http.ResponseWriter, r *http.Request) {
	var item entities.EquipmentItem
	if err := decodeJSON(w, r, &item); err != nil {
		writeError(w, err)
		return
	}
	item.ID = mux.Vars(r)["id"]

	saved, err := s.useCase.SaveEquipmentItem(item)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *HTTPServer) getPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.useCase.GetPreferences(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *HTTPServer) putPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs entities.UserPreferences
	if err := decodeJSON(w, r, &prefs); err != nil {
		writeError(w, err)
		return
	}
	prefs.UserID = mux.Vars(r)["id"]

	saved, err := s.useCase.UpdatePreferences(prefs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *HTTPServer) addFavorite(w http.ResponseWriter, r *http.Request) {
	s.setFavorite(w, r, true)
}

func (s *HTTPServer) removeFavorite(w http.ResponseWriter, r *http.Request) {
	s.setFavorite(w, r, false)
}

func (s *HTTPServer) setFavorite(w http.ResponseWriter, r *http.Request, on bool) {
	vars := mux.Vars(r)
	prefs, err := s.useCase.SetFavorite(vars["id"], vars["itemID"], on)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// conditionInputs reads the optional clarity and lux query parameters
func conditionInputs(r *http.Request) (usecases.ConditionInputs, error) {
	q := r.URL.Query()
	in := usecases.ConditionInputs{WaterClarity: strings.ToLower(q.Get("clarity"))}
	if v := q.Get("lux"); v != "" {
		lux, err := strconv.ParseFloat(v, 64)
		if err != nil || lux < 0 {
			return in, entities.NewValidationError("lux must be a non-negative number")
		}
		in.LightLux = &lux
	}
	return in, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return entities.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}

// writeError maps domain errors to status codes with a user-facing message
func writeError(w http.ResponseWriter, err error) {
	status, msg := http.StatusInternalServerError, "internal error"
	var verr *entities.ValidationError

	switch {
	case errors.As(err, &verr):
		status, msg = http.StatusBadRequest, verr.Message
	case errors.Is(err, entities.ErrGeocoderUnavailable):
		status, msg = http.StatusBadRequest, "place names cannot be resolved, send latitude and longitude"
	case errors.Is(err, entities.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, entities.ErrNoTideStation):
		status, msg = http.StatusUnprocessableEntity, "location has no tide station"
	case errors.Is(err, usecases.ErrUpstream):
		status, msg = http.StatusBadGateway, "remote data source unavailable"
	default:
		log.Error().Err(err).Msg("Request failed")
	}

	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("HTTP request")
	})
}
