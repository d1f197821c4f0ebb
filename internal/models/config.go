package models

import (
	"path"

	"github.com/kardianos/osext"
)

// AppConfig is the application's main configuration structure
type AppConfig struct {
	// The directory where the service stores all of its data - defaults to the /data
	// subdirectory of the folder the executable resides in
	DataDir string `json:"dataDir"`
	// The IP address to listen at - including the port number
	ListenAddress string `json:"listenAddress"`
	// Tuning knobs for conflict detection, popularity scoring and slot suggestion
	Scheduling SchedulingConfig `json:"scheduling"`
	// Seed data for the user and major directories
	Directory DirectoryConfig `json:"directory"`
}

// SchedulingConfig bundles the tunable parts of the scheduling components. The scoring
// weights are deliberately configuration and not constants, so they can be adjusted
// without touching code
type SchedulingConfig struct {
	// Distance between two candidate start times when searching for a free slot (minutes)
	SlotGranularityMinutes uint `json:"slotGranularityMinutes"`
	// First hour of the day (0-23) in which events may be suggested
	WorkdayStartHour uint `json:"workdayStartHour"`
	// First hour of the day (0-23) in which events may no longer be suggested
	WorkdayEndHour uint `json:"workdayEndHour"`
	// Weight of the historical attendance component in the candidate score
	HistoryWeight float64 `json:"historyWeight"`
	// Weight of the penalty for candidates close to already-scheduled events of the
	// same audience
	ClusterPenaltyWeight float64 `json:"clusterPenaltyWeight"`
	// Distance below which a same-audience event starts penalizing a candidate (minutes)
	ClusterWindowMinutes uint `json:"clusterWindowMinutes"`
	// Number of alternative suggestions to return besides the primary one
	MaxAlternatives uint `json:"maxAlternatives"`
	// Default length of the suggestion search window (days)
	DefaultSearchDays uint `json:"defaultSearchDays"`
	// Interval between two runs of the session auto-cancel sweep (minutes)
	SweepIntervalMinutes uint `json:"sweepIntervalMinutes"`
}

// DirectoryConfig seeds the in-memory user and major directories. In the full deployment
// both are backed by the surrounding user management - this service only needs id-to-name
// lookups from them
type DirectoryConfig struct {
	Users  []User  `json:"users"`
	Majors []Major `json:"majors"`
}

// GetDefaultConfig returns the default configuration values for the application
func GetDefaultConfig() (*AppConfig, error) {
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		return nil, err
	}
	return &AppConfig{
		DataDir:       path.Join(execDir, "data"),
		ListenAddress: ":3000",
		Scheduling:    GetDefaultSchedulingConfig(),
	}, nil
}

// GetDefaultSchedulingConfig returns the default scheduling parameters
func GetDefaultSchedulingConfig() SchedulingConfig {
	return SchedulingConfig{
		SlotGranularityMinutes: 60,
		WorkdayStartHour:       8,
		WorkdayEndHour:         18,
		HistoryWeight:          0.7,
		ClusterPenaltyWeight:   0.3,
		ClusterWindowMinutes:   180,
		MaxAlternatives:        5,
		DefaultSearchDays:      14,
		SweepIntervalMinutes:   15,
	}
}
