package schedule

import (
	"sort"
	"time"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
)

// SuggestParams bundles the tunable knobs of the best-time search. See
// models.SchedulingConfig for the configuration these are usually taken from
type SuggestParams struct {
	// Distance between two enumerated candidate start times
	Granularity time.Duration
	// First hour of the day (0-23) a suggested event may start in
	WorkdayStartHour int
	// First hour of the day a suggested event must have ended by
	WorkdayEndHour int
	// Weight of the historical attendance component
	HistoryWeight float64
	// Weight of the penalty for clustering near same-audience events
	ClusterPenaltyWeight float64
	// Distance below which a same-audience event starts penalizing a candidate
	ClusterWindow time.Duration
	// Number of alternatives returned besides the primary suggestion
	MaxAlternatives int
}

// SuggestParamsFromConfig converts the persisted configuration into search parameters
func SuggestParamsFromConfig(c models.SchedulingConfig) SuggestParams {
	return SuggestParams{
		Granularity:          time.Duration(c.SlotGranularityMinutes) * time.Minute,
		WorkdayStartHour:     int(c.WorkdayStartHour),
		WorkdayEndHour:       int(c.WorkdayEndHour),
		HistoryWeight:        c.HistoryWeight,
		ClusterPenaltyWeight: c.ClusterPenaltyWeight,
		ClusterWindow:        time.Duration(c.ClusterWindowMinutes) * time.Minute,
		MaxAlternatives:      int(c.MaxAlternatives),
	}
}

// Suggestion is one scored candidate start time
type Suggestion struct {
	// Proposed start of the event
	StartsAt time.Time `json:"startsAt"`
	// Desirability of the slot, clamped to [0, 1]
	Score float64 `json:"score"`
}

// SuggestionResult is the outcome of a best-time search. A nil Primary means no candidate
// in the window survived conflict filtering - a valid, reportable outcome, not an error
type SuggestionResult struct {
	// The highest-scoring viable start time, or nil when the window is fully booked
	Primary *Suggestion `json:"primary"`
	// The next best viable start times, sorted by score descending
	Alternatives []Suggestion `json:"alternatives"`
}

// SuggestBestTime searches the given window for the most promising start time for a new
// event targeting the given major.
//
// Candidate start times are enumerated at the configured granularity inside the working
// hours mask. A candidate is dropped as soon as the conflict rules report a hit against
// the snapshot (for a search without a known organizer this reduces to the audience
// rule). Surviving candidates are scored from two parts: the historical attendance of
// same-major events in the same weekday/hour bucket, and a penalty for sitting close to
// an already-scheduled event of the same audience.
//
// The whole computation runs over the passed snapshot - storage is not consulted
func SuggestBestTime(p SuggestParams, majorID uint, duration time.Duration, window Interval, existing []models.Event, joinCounts map[uint]uint) SuggestionResult {
	if duration <= 0 || !window.Valid() {
		return SuggestionResult{}
	}
	if p.Granularity <= 0 {
		p.Granularity = time.Hour
	}
	buckets := attendanceBuckets(existing, joinCounts, majorID)

	var candidates []Suggestion
	for start := alignToGranularity(window.Start, p.Granularity); !start.Add(duration).After(window.End); start = start.Add(p.Granularity) {
		iv := NewInterval(start, start.Add(duration))
		if !insideWorkday(iv, p) {
			continue
		}
		cand := Candidate{MajorID: majorID, StartsAt: iv.Start, EndsAt: iv.End}
		if len(DetectConflicts(cand, existing)) > 0 {
			continue
		}
		score := p.HistoryWeight*buckets.normalized(iv.Start) -
			p.ClusterPenaltyWeight*clusterPenalty(iv, majorID, existing, p.ClusterWindow)
		candidates = append(candidates, Suggestion{StartsAt: start, Score: clampScore(score)})
	}

	// Best score first; equal scores go to the earlier start time
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].StartsAt.Before(candidates[j].StartsAt)
	})

	var res SuggestionResult
	if len(candidates) == 0 {
		return res
	}
	res.Primary = &candidates[0]
	rest := candidates[1:]
	if len(rest) > p.MaxAlternatives {
		rest = rest[:p.MaxAlternatives]
	}
	res.Alternatives = rest
	return res
}

// attendance per (weekday, hour) bucket among same-major events
type bucketStats struct {
	sum map[int]float64
	num map[int]float64
	max float64
}

func bucketKey(t time.Time) int {
	return int(t.Weekday())*24 + t.Hour()
}

func attendanceBuckets(events []models.Event, joinCounts map[uint]uint, majorID uint) bucketStats {
	b := bucketStats{sum: make(map[int]float64), num: make(map[int]float64)}
	for i := range events {
		ev := &events[i]
		if !ev.Active() || ev.MajorID != majorID {
			continue
		}
		key := bucketKey(ev.StartsAt)
		b.sum[key] += float64(joinCounts[ev.ID])
		b.num[key]++
	}
	for key, num := range b.num {
		if avg := b.sum[key] / num; avg > b.max {
			b.max = avg
		}
	}
	return b
}

// normalized returns the bucket's average attendance scaled to [0, 1] against the best
// bucket. With no history at all every slot scores a neutral 0.5, so the search degrades
// to "earliest non-conflicting slot" via the tie-break
func (b bucketStats) normalized(t time.Time) float64 {
	if b.max == 0 {
		return 0.5
	}
	key := bucketKey(t)
	if b.num[key] == 0 {
		return 0
	}
	return b.sum[key] / b.num[key] / b.max
}

// clusterPenalty grows linearly from 0 to 1 as a candidate approaches an active event of
// the same audience. Candidates further away than the cluster window are not penalized
func clusterPenalty(iv Interval, majorID uint, events []models.Event, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	var worst float64
	for i := range events {
		ev := &events[i]
		if !ev.Active() || ev.MajorID != majorID {
			continue
		}
		gap := iv.Gap(NewInterval(ev.StartsAt, ev.EndsAt))
		if gap >= window {
			continue
		}
		if p := 1 - float64(gap)/float64(window); p > worst {
			worst = p
		}
	}
	return worst
}

func insideWorkday(iv Interval, p SuggestParams) bool {
	if p.WorkdayEndHour <= p.WorkdayStartHour {
		// No mask configured
		return true
	}
	dayStart := time.Date(iv.Start.Year(), iv.Start.Month(), iv.Start.Day(), p.WorkdayStartHour, 0, 0, 0, iv.Start.Location())
	dayEnd := time.Date(iv.Start.Year(), iv.Start.Month(), iv.Start.Day(), p.WorkdayEndHour, 0, 0, 0, iv.Start.Location())
	return iv.WithinHorizon(NewInterval(dayStart, dayEnd))
}

func alignToGranularity(t time.Time, granularity time.Duration) time.Time {
	if granularity <= 0 {
		return t
	}
	aligned := t.Truncate(granularity)
	if aligned.Before(t) {
		aligned = aligned.Add(granularity)
	}
	return aligned
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
