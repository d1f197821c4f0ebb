package schedule

import (
	"sort"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
)

// Popularity is the derived popularity metric of one event. It is never persisted -
// both fields are recomputed from the participation records on demand
type Popularity struct {
	// Number of distinct users that joined the event
	ParticipantCount uint `json:"participantCount"`
	// Participant count normalized against the historical baseline, clamped to [0, 1]
	Score float64 `json:"popularityScore"`
}

// PopularityScore normalizes a participant count against a baseline attendance and clamps
// the result to [0, 1]. A baseline below one (no history at all) counts as one, so an
// event with at least one participant never scores zero just because history is missing
func PopularityScore(participants uint, baseline float64) float64 {
	if baseline < 1 {
		baseline = 1
	}
	score := float64(participants) / baseline
	if score > 1 {
		score = 1
	}
	return score
}

// MajorBaseline computes the normalization baseline for events of the given major: the
// average participant count over the major's events, falling back to the average over all
// events when the major has no history yet. Returns zero when there is no history at all
func MajorBaseline(events []models.Event, joinCounts map[uint]uint, majorID uint) float64 {
	var majorSum, majorNum, globalSum, globalNum float64
	for i := range events {
		ev := &events[i]
		count := float64(joinCounts[ev.ID])
		globalSum += count
		globalNum++
		if ev.MajorID == majorID {
			majorSum += count
			majorNum++
		}
	}
	if majorNum > 0 {
		return majorSum / majorNum
	}
	if globalNum > 0 {
		return globalSum / globalNum
	}
	return 0
}

// RankedEvent pairs an event with its computed popularity for ranking
type RankedEvent struct {
	EventID    uint       `json:"eventId"`
	Name       string     `json:"name"`
	Popularity Popularity `json:"popularity"`

	createdAt int64
}

// RankByPopularity orders the given events by score, highest first. Equal scores are
// resolved in favor of the older event - an established event outranks a recent one with
// the same score
func RankByPopularity(events []models.Event, joinCounts map[uint]uint) []RankedEvent {
	ranked := make([]RankedEvent, 0, len(events))
	for i := range events {
		ev := &events[i]
		count := joinCounts[ev.ID]
		baseline := MajorBaseline(events, joinCounts, ev.MajorID)
		ranked = append(ranked, RankedEvent{
			EventID: ev.ID,
			Name:    ev.Name,
			Popularity: Popularity{
				ParticipantCount: count,
				Score:            PopularityScore(count, baseline),
			},
			createdAt: ev.CreatedAt.UnixNano(),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Popularity.Score != ranked[j].Popularity.Score {
			return ranked[i].Popularity.Score > ranked[j].Popularity.Score
		}
		return ranked[i].createdAt < ranked[j].createdAt
	})
	return ranked
}
