package internal

import (
	"fmt"
	"time"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/schedule"
	"github.com/go-kit/kit/endpoint"
	"golang.org/x/net/context"
)

// EventEndpoints is a collection of endpoints for working with the event service
type EventEndpoints struct {
	List         endpoint.Endpoint
	Get          endpoint.Endpoint
	Create       endpoint.Endpoint
	Update       endpoint.Endpoint
	Cancel       endpoint.Endpoint
	AddTimeline  endpoint.Endpoint
	ListTimeline endpoint.Endpoint
	Join         endpoint.Endpoint
	ListJoins    endpoint.Endpoint
}

// SchedulingEndpoints is a collection of endpoints for the computed scheduling views
type SchedulingEndpoints struct {
	CheckConflict   endpoint.Endpoint
	RecheckEvent    endpoint.Endpoint
	SuggestBestTime endpoint.Endpoint
	ScorePopularity endpoint.Endpoint
	RankEvents      endpoint.Endpoint
}

// SessionEndpoints is a collection of endpoints for the mentorship session lifecycle
type SessionEndpoints struct {
	Request endpoint.Endpoint
	Get     endpoint.Endpoint
	List    endpoint.Endpoint
	Confirm endpoint.Endpoint
	Cancel  endpoint.Endpoint
	Rate    endpoint.Endpoint
	Sweep   endpoint.Endpoint
	Stats   endpoint.Endpoint
}

// ConfigEndpoints is a collection of endpoints for reading and tuning the scheduling configuration
type ConfigEndpoints struct {
	GetScheduling    endpoint.Endpoint
	UpdateScheduling endpoint.Endpoint
}

// The base for all responses which always contains an "ok" property to show if the call was successful and a
// data element containing the result of the request
type basicResponse struct {
	OK   bool        `json:"ok"`
	Data interface{} `json:"data,omitempty"`
}

type pagingResponse struct {
	Rows uint        `json:"rows"`
	List interface{} `json:"list"`
}

// sweepResponse reports how many sessions a sweep run transitioned
type sweepResponse struct {
	Expired uint `json:"expired"`
}

// -- Event service ----------------------------------------------------------------------------------------------------

// MakeEventEndpoints builds the endpoints needed to communicate with the event service
func MakeEventEndpoints(s EventService) EventEndpoints {
	return EventEndpoints{
		List:         makeListEventsEndpoint(s),
		Get:          makeGetEventEndpoint(s),
		Create:       makeCreateEventEndpoint(s),
		Update:       makeUpdateEventEndpoint(s),
		Cancel:       makeCancelEventEndpoint(s),
		AddTimeline:  makeAddTimelineEndpoint(s),
		ListTimeline: makeListTimelineEndpoint(s),
		Join:         makeJoinEventEndpoint(s),
		ListJoins:    makeListJoinsEndpoint(s),
	}
}

func makeListEventsEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		se, ok := request.(Search)
		if !ok {
			return nil, fmt.Errorf("illegal search parameter")
		}
		list, numRows, err := s.List(ctx, &se)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, pagingResponse{numRows, list}}, nil
	}
}

func makeGetEventEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(uint)
		if !ok {
			return nil, fmt.Errorf("illegal event ID")
		}
		ev, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, ev}, nil
	}
}

func makeCreateEventEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		event, ok := request.(models.Event)
		if !ok {
			return nil, fmt.Errorf("illegal event parameter")
		}
		ev, err := s.Create(ctx, &event)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, ev}, nil
	}
}

func makeUpdateEventEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		event, ok := request.(models.Event)
		if !ok {
			return nil, fmt.Errorf("illegal event parameter")
		}
		err := s.Update(ctx, &event)
		if err != nil {
			return nil, err
		}
		return basicResponse{OK: true}, nil
	}
}

func makeCancelEventEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(uint)
		if !ok {
			return nil, fmt.Errorf("illegal event ID")
		}
		if err := s.Cancel(ctx, id); err != nil {
			return nil, err
		}
		return basicResponse{OK: true}, nil
	}
}

func makeAddTimelineEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		entry, ok := request.(models.EventTimeLine)
		if !ok {
			return nil, fmt.Errorf("illegal timeline parameter")
		}
		created, err := s.AddTimelineEntry(ctx, &entry)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, created}, nil
	}
}

func makeListTimelineEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(uint)
		if !ok {
			return nil, fmt.Errorf("illegal event ID")
		}
		entries, err := s.ListTimeline(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, entries}, nil
	}
}

func makeJoinEventEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(JoinRequest)
		if !ok {
			return nil, fmt.Errorf("illegal join parameter")
		}
		join, err := s.Join(ctx, &req)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, join}, nil
	}
}

func makeListJoinsEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(uint)
		if !ok {
			return nil, fmt.Errorf("illegal event ID")
		}
		joins, err := s.ListJoins(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, joins}, nil
	}
}

// -- Scheduling service -----------------------------------------------------------------------------------------------

// MakeSchedulingEndpoints builds the endpoints needed to communicate with the scheduling service
func MakeSchedulingEndpoints(s SchedulingService) SchedulingEndpoints {
	return SchedulingEndpoints{
		CheckConflict:   makeCheckConflictEndpoint(s),
		RecheckEvent:    makeRecheckEventEndpoint(s),
		SuggestBestTime: makeSuggestBestTimeEndpoint(s),
		ScorePopularity: makeScorePopularityEndpoint(s),
		RankEvents:      makeRankEventsEndpoint(s),
	}
}

func makeCheckConflictEndpoint(s SchedulingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		cand, ok := request.(schedule.Candidate)
		if !ok {
			return nil, fmt.Errorf("illegal candidate parameter")
		}
		hits, err := s.CheckConflict(ctx, cand)
		if err != nil {
			return nil, err
		}
		if hits == nil {
			hits = []schedule.ConflictHit{}
		}
		return basicResponse{true, hits}, nil
	}
}

func makeRecheckEventEndpoint(s SchedulingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(uint)
		if !ok {
			return nil, fmt.Errorf("illegal event ID")
		}
		hits, err := s.RecheckEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		if hits == nil {
			hits = []schedule.ConflictHit{}
		}
		return basicResponse{true, hits}, nil
	}
}

func makeSuggestBestTimeEndpoint(s SchedulingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(SuggestionRequest)
		if !ok {
			return nil, fmt.Errorf("illegal suggestion parameter")
		}
		res, err := s.SuggestBestTime(ctx, &req)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, res}, nil
	}
}

func makeScorePopularityEndpoint(s SchedulingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(uint)
		if !ok {
			return nil, fmt.Errorf("illegal event ID")
		}
		pop, err := s.ScorePopularity(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, pop}, nil
	}
}

func makeRankEventsEndpoint(s SchedulingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		ranked, err := s.RankEvents(ctx)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, ranked}, nil
	}
}

// -- Mentorship service -----------------------------------------------------------------------------------------------

// MakeSessionEndpoints builds the endpoints needed to communicate with the mentorship service
func MakeSessionEndpoints(s MentorshipService) SessionEndpoints {
	return SessionEndpoints{
		Request: makeRequestSessionEndpoint(s),
		Get:     makeGetSessionEndpoint(s),
		List:    makeListSessionsEndpoint(s),
		Confirm: makeConfirmSessionEndpoint(s),
		Cancel:  makeCancelSessionEndpoint(s),
		Rate:    makeRateSessionEndpoint(s),
		Sweep:   makeSweepEndpoint(s),
		Stats:   makeSessionStatsEndpoint(s),
	}
}

func makeRequestSessionEndpoint(s MentorshipService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(SessionRequest)
		if !ok {
			return nil, fmt.Errorf("illegal session parameter")
		}
		sess, err := s.Request(ctx, &req)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, sess}, nil
	}
}

func makeGetSessionEndpoint(s MentorshipService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(uint)
		if !ok {
			return nil, fmt.Errorf("illegal session ID")
		}
		sess, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, sess}, nil
	}
}

func makeListSessionsEndpoint(s MentorshipService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		p, ok := request.(Pagination)
		if !ok {
			return nil, fmt.Errorf("illegal pagination parameter")
		}
		list, numRows, err := s.List(ctx, &p)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, pagingResponse{numRows, list}}, nil
	}
}

func makeConfirmSessionEndpoint(s MentorshipService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(uint)
		if !ok {
			return nil, fmt.Errorf("illegal session ID")
		}
		if err := s.Confirm(ctx, id); err != nil {
			return nil, err
		}
		return basicResponse{OK: true}, nil
	}
}

func makeCancelSessionEndpoint(s MentorshipService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(uint)
		if !ok {
			return nil, fmt.Errorf("illegal session ID")
		}
		if err := s.Cancel(ctx, id); err != nil {
			return nil, err
		}
		return basicResponse{OK: true}, nil
	}
}

func makeRateSessionEndpoint(s MentorshipService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(RateRequest)
		if !ok {
			return nil, fmt.Errorf("illegal rating parameter")
		}
		if err := s.CompleteAndRate(ctx, &req); err != nil {
			return nil, err
		}
		return basicResponse{OK: true}, nil
	}
}

func makeSweepEndpoint(s MentorshipService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		count, err := s.RunAutoCancelSweep(ctx, time.Now())
		if err != nil {
			return nil, err
		}
		return basicResponse{true, sweepResponse{Expired: count}}, nil
	}
}

func makeSessionStatsEndpoint(s MentorshipService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		stats, err := s.Stats(ctx)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, stats}, nil
	}
}

// -- Configuration ----------------------------------------------------------------------------------------------------

// MakeConfigEndpoints creates the endpoints needed to use the configuration service
func MakeConfigEndpoints(s ConfigService) ConfigEndpoints {
	return ConfigEndpoints{
		GetScheduling:    makeGetSchedulingConfigEndpoint(s),
		UpdateScheduling: makeUpdateSchedulingConfigEndpoint(s),
	}
}

func makeGetSchedulingConfigEndpoint(s ConfigService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return basicResponse{true, s.SchedulingConfig(ctx)}, nil
	}
}

func makeUpdateSchedulingConfigEndpoint(s ConfigService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		conf, ok := request.(models.SchedulingConfig)
		if !ok {
			return nil, fmt.Errorf("illegal configuration parameter")
		}
		if err := s.UpdateSchedulingConfig(ctx, conf); err != nil {
			return nil, err
		}
		return basicResponse{OK: true}, nil
	}
}
