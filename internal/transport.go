package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/ctxhelper"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/schedule"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	apiBasePath = "/api"
)

// Defines an error that defines the HTTP status that should be returned
type httpStatuser interface {
	Status() int
}

// Defines an error that returns a machine-readable error code
type errorCoder interface {
	ErrorCode() string
}

// Defines an error that contains a data field with additional information
type dataBearer interface {
	Data() interface{}
}

type errorResponse struct {
	basicResponse
	// The error code
	Error   string      `json:"error"`
	Message string      `json:"errorMessage"`
	Details interface{} `json:"errorDetails,omitempty"`
}

// MakeHTTPHandler creates the main HTTP handler for the scheduling service
func MakeHTTPHandler(
	es EventService,
	ss SchedulingService,
	ms MentorshipService,
	cs ConfigService,
	logger *logrus.Entry,
) http.Handler {
	r := mux.NewRouter()

	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(encodeError),
		httptransport.ServerBefore(makeContextInjector(logger)),
	}

	// -- Event service --------------------------------
	{
		evEp := MakeEventEndpoints(es)

		// List
		r.Methods(http.MethodGet).Path(apiBasePath + "/events").Handler(httptransport.NewServer(
			evEp.List,
			decodeSearchRequest,
			encodeJSONResponse,
			options...,
		))

		// Get
		r.Methods(http.MethodGet).Path(apiBasePath + "/events/{id:[0-9]+}").Handler(httptransport.NewServer(
			evEp.Get,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// Create
		r.Methods(http.MethodPost).Path(apiBasePath + "/events").Handler(httptransport.NewServer(
			evEp.Create,
			decodeEvent,
			encodeJSONResponse,
			options...,
		))

		// Update
		r.Methods(http.MethodPut).Path(apiBasePath + "/events/{id:[0-9]+}").Handler(httptransport.NewServer(
			evEp.Update,
			decodeEventUpdate,
			encodeJSONResponse,
			options...,
		))

		// Cancel
		r.Methods(http.MethodPost).Path(apiBasePath + "/events/{id:[0-9]+}/cancel").Handler(httptransport.NewServer(
			evEp.Cancel,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// AddTimeline
		r.Methods(http.MethodPost).Path(apiBasePath + "/events/{id:[0-9]+}/timeline").Handler(httptransport.NewServer(
			evEp.AddTimeline,
			decodeTimelineEntry,
			encodeJSONResponse,
			options...,
		))

		// ListTimeline
		r.Methods(http.MethodGet).Path(apiBasePath + "/events/{id:[0-9]+}/timeline").Handler(httptransport.NewServer(
			evEp.ListTimeline,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// Join
		r.Methods(http.MethodPost).Path(apiBasePath + "/events/{id:[0-9]+}/join").Handler(httptransport.NewServer(
			evEp.Join,
			decodeJoinRequest,
			encodeJSONResponse,
			options...,
		))

		// ListJoins
		r.Methods(http.MethodGet).Path(apiBasePath + "/events/{id:[0-9]+}/joins").Handler(httptransport.NewServer(
			evEp.ListJoins,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))
	}

	// -- Scheduling service ---------------------------
	{
		scEp := MakeSchedulingEndpoints(ss)

		// CheckConflict (unsaved candidate)
		r.Methods(http.MethodPost).Path(apiBasePath + "/events/checkConflict").Handler(httptransport.NewServer(
			scEp.CheckConflict,
			decodeCandidate,
			encodeJSONResponse,
			options...,
		))

		// RecheckEvent (stored event, body-less)
		r.Methods(http.MethodPost).Path(apiBasePath + "/events/{id:[0-9]+}/checkConflict").Handler(httptransport.NewServer(
			scEp.RecheckEvent,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// ScorePopularity
		r.Methods(http.MethodGet).Path(apiBasePath + "/events/{id:[0-9]+}/popularity").Handler(httptransport.NewServer(
			scEp.ScorePopularity,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// RankEvents
		r.Methods(http.MethodGet).Path(apiBasePath + "/events/ranking").Handler(httptransport.NewServer(
			scEp.RankEvents,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// SuggestBestTime
		r.Methods(http.MethodGet).Path(apiBasePath + "/suggestions").Handler(httptransport.NewServer(
			scEp.SuggestBestTime,
			decodeSuggestionRequest,
			encodeJSONResponse,
			options...,
		))
	}

	// -- Mentorship service ---------------------------
	{
		sEp := MakeSessionEndpoints(ms)

		// Request
		r.Methods(http.MethodPost).Path(apiBasePath + "/sessions").Handler(httptransport.NewServer(
			sEp.Request,
			decodeSessionRequest,
			encodeJSONResponse,
			options...,
		))

		// List
		r.Methods(http.MethodGet).Path(apiBasePath + "/sessions").Handler(httptransport.NewServer(
			sEp.List,
			decodePaginationRequest,
			encodeJSONResponse,
			options...,
		))

		// Stats
		r.Methods(http.MethodGet).Path(apiBasePath + "/sessions/stats").Handler(httptransport.NewServer(
			sEp.Stats,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// Sweep
		r.Methods(http.MethodPost).Path(apiBasePath + "/sessions/sweep").Handler(httptransport.NewServer(
			sEp.Sweep,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// Get
		r.Methods(http.MethodGet).Path(apiBasePath + "/sessions/{id:[0-9]+}").Handler(httptransport.NewServer(
			sEp.Get,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// Confirm
		r.Methods(http.MethodPost).Path(apiBasePath + "/sessions/{id:[0-9]+}/confirm").Handler(httptransport.NewServer(
			sEp.Confirm,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// Cancel
		r.Methods(http.MethodPost).Path(apiBasePath + "/sessions/{id:[0-9]+}/cancel").Handler(httptransport.NewServer(
			sEp.Cancel,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// Rate
		r.Methods(http.MethodPost).Path(apiBasePath + "/sessions/{id:[0-9]+}/rate").Handler(httptransport.NewServer(
			sEp.Rate,
			decodeRateRequest,
			encodeJSONResponse,
			options...,
		))
	}

	// -- Config service -------------------------------
	{
		configEndpoints := MakeConfigEndpoints(cs)

		// GetScheduling
		r.Methods(http.MethodGet).Path(apiBasePath + "/config/scheduling").Handler(httptransport.NewServer(
			configEndpoints.GetScheduling,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// UpdateScheduling
		r.Methods(http.MethodPut).Path(apiBasePath + "/config/scheduling").Handler(httptransport.NewServer(
			configEndpoints.UpdateScheduling,
			decodeSchedulingConfig,
			encodeJSONResponse,
			options...,
		))
	}

	// Prometheus metrics
	r.Methods(http.MethodGet).Path("/metrics").Handler(promhttp.Handler())

	// Simple alive answer for checking if HTTP can be reached
	r.Methods(http.MethodGet).Path("/alive").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		data := map[string]bool{"ok": true}
		json.NewEncoder(w).Encode(data)
	})

	return r
}

// decodeNilRequest just does nothing with the request. It is used for endpoints that don't need anything to be passed
func decodeNilRequest(_ context.Context, r *http.Request) (request interface{}, err error) {
	return nil, nil
}

// decodePaginationRequest reads the pagination information from the request's query variables
func decodePaginationRequest(_ context.Context, r *http.Request) (request interface{}, err error) {
	val := r.URL.Query()
	pag := Pagination{
		Limit: 50,
	}
	if i, err := strconv.ParseUint(val.Get("offset"), 10, 64); err == nil {
		pag.Offset = uint(i)
	}
	if i, err := strconv.ParseUint(val.Get("limit"), 10, 64); err == nil {
		pag.Limit = uint(i)
	}
	return pag, nil
}

// decodeSearchRequest decodes the parameters of a search by checking the GET variables "search", "limit" and "offset"
func decodeSearchRequest(ctx context.Context, r *http.Request) (request interface{}, err error) {
	val := r.URL.Query()
	pag, _ := decodePaginationRequest(ctx, r)
	search := Search{
		Search:     val.Get("search"),
		Pagination: pag.(Pagination),
	}
	return search, nil
}

// decodeSuggestionRequest reads the best-time search parameters from the query variables
// "major", "duration" (minutes) and "days"
func decodeSuggestionRequest(_ context.Context, r *http.Request) (interface{}, error) {
	val := r.URL.Query()
	var req SuggestionRequest
	if i, err := strconv.ParseUint(val.Get("major"), 10, 64); err == nil {
		req.MajorID = uint(i)
	} else {
		return nil, MakeError(http.StatusBadRequest, ErrCodeRequiredFieldMissing, "Missing or illegal 'major' parameter")
	}
	if i, err := strconv.ParseUint(val.Get("duration"), 10, 64); err == nil {
		req.DurationMinutes = uint(i)
	} else {
		return nil, MakeError(http.StatusBadRequest, ErrCodeRequiredFieldMissing, "Missing or illegal 'duration' parameter")
	}
	if i, err := strconv.ParseUint(val.Get("days"), 10, 64); err == nil {
		req.SearchDays = uint(i)
	}
	return req, nil
}

// decodeEvent tries to load an event object from the provided HTTP request's body
func decodeEvent(_ context.Context, r *http.Request) (interface{}, error) {
	var ev models.Event
	err := json.NewDecoder(r.Body).Decode(&ev)
	if err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	return ev, nil
}

// Decodes an event from an update request where the ID of the event is in the path
func decodeEventUpdate(ctx context.Context, r *http.Request) (interface{}, error) {
	ev, err := decodeEvent(ctx, r)
	if err != nil {
		return nil, err
	}
	id, err := decodeIDFromPath(ctx, r)
	if err != nil {
		return nil, err
	}
	ret := ev.(models.Event)
	ret.ID = id.(uint)
	return ret, nil
}

// decodeCandidate reads a conflict-check candidate from the request's JSON body
func decodeCandidate(_ context.Context, r *http.Request) (interface{}, error) {
	var cand schedule.Candidate
	err := json.NewDecoder(r.Body).Decode(&cand)
	if err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	return cand, nil
}

// decodeTimelineEntry reads an agenda entry from the request's body; the event ID comes from the path
func decodeTimelineEntry(ctx context.Context, r *http.Request) (interface{}, error) {
	var entry models.EventTimeLine
	err := json.NewDecoder(r.Body).Decode(&entry)
	if err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	id, err := getUintFromPath("id", r)
	if err != nil {
		return nil, err
	}
	entry.EventID = id
	return entry, nil
}

// decodeJoinRequest reads a participation record from the request's body; the event ID comes from the path
func decodeJoinRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var req JoinRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	id, err := getUintFromPath("id", r)
	if err != nil {
		return nil, err
	}
	req.EventID = id
	return req, nil
}

// decodeSessionRequest reads a new-session request from the request's JSON body
func decodeSessionRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req SessionRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	return req, nil
}

// decodeRateRequest reads a rating from the request's body; the session ID comes from the path
func decodeRateRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var req RateRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	id, err := getUintFromPath("id", r)
	if err != nil {
		return nil, err
	}
	req.SessionID = id
	return req, nil
}

// decodeSchedulingConfig reads an updated scheduling configuration from the request's JSON body
func decodeSchedulingConfig(_ context.Context, r *http.Request) (interface{}, error) {
	var conf models.SchedulingConfig
	err := json.NewDecoder(r.Body).Decode(&conf)
	if err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	return conf, nil
}

// getUintFromPath is a helper function that gets a uint from the given path variable
func getUintFromPath(varname string, r *http.Request) (uint, error) {
	errmsg := fmt.Sprintf("Value for '%s' is no valid unsigned integer", varname)
	vars := mux.Vars(r)
	str, ok := vars[varname]
	if !ok {
		return 0, MakeError(http.StatusBadRequest, ErrCodeInvalidUint, errmsg)
	}
	id, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, MakeError(http.StatusBadRequest, ErrCodeInvalidUint, errmsg)
	}
	return uint(id), nil
}

// Decodes an ID from the "id" path variable provided by GoRilla
func decodeIDFromPath(ctx context.Context, r *http.Request) (interface{}, error) {
	return getUintFromPath("id", r)
}

// Encodes a typical JSON response
func encodeJSONResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

// Builds an error response based on the incoming error
func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		panic("encodeError with nil error")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if st, ok := err.(httpStatuser); ok {
		w.WriteHeader(st.Status())
	} else {
		w.WriteHeader(http.StatusInternalServerError)
	}
	ret := errorResponse{
		basicResponse: basicResponse{false, nil},
		Message:       err.Error(),
		Error:         ErrCodeUnknown,
	}
	if cd, ok := err.(errorCoder); ok {
		ret.Error = cd.ErrorCode()
	}
	if db, ok := err.(dataBearer); ok {
		if data := db.Data(); data != nil {
			if err, ok := data.(error); ok {
				ret.Details = err.Error()
			} else {
				ret.Details = data
			}
		}
	}
	json.NewEncoder(w).Encode(&ret)
}

func makeContextInjector(logger *logrus.Entry) httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		return context.WithValue(ctx, ctxhelper.KeyLogger, logger)
	}
}
