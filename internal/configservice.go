package internal

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/ctxhelper"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/log"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
	"github.com/pkg/errors"
	"golang.org/x/net/context"
)

var (
	// ErrIllegalWeights is the error returned when an updated scheduling configuration does not validate
	ErrIllegalWeights = MakeError(http.StatusBadRequest, ErrCodeIllegalValue, "Illegal scheduling parameters provided")
)

// ConfigService gives access to parts of the application's configuration. The scheduling
// parameters are kept adjustable at runtime since the scoring weights are a default, not
// a confirmed formula
type ConfigService interface {
	// SchedulingConfig returns the currently active scheduling parameters
	SchedulingConfig(ctx context.Context) models.SchedulingConfig
	// UpdateSchedulingConfig replaces the scheduling parameters and persists them
	UpdateSchedulingConfig(ctx context.Context, c models.SchedulingConfig) error
	// Load loads the application config from its default file location
	Load(ctx context.Context) error
	// LoadFromFile loads the configuration from the given JSON file and returns it
	LoadFromFile(ctx context.Context, filename string) error
	// Write writes the current application configuration to the default file name
	Write(ctx context.Context) error
	// WriteToFile writes the current application configuration to a JSON file
	WriteToFile(ctx context.Context, filename string) error
	// GetConfig retuns the current application configuration
	GetConfig(ctx context.Context) models.AppConfig
}

// -- ConfigService implementation -------------------------------------------------------------------------------------

type configService struct {
	sync.RWMutex
	configFilename string
	config         *models.AppConfig
}

// NewConfigService creates a new configuration service instance with the given default file name
func NewConfigService(configFilename string) ConfigService {
	return &configService{
		configFilename: configFilename,
	}
}

// SchedulingConfig returns the currently active scheduling parameters
func (s *configService) SchedulingConfig(ctx context.Context) models.SchedulingConfig {
	s.RLock()
	defer s.RUnlock()
	if s.config != nil {
		return s.config.Scheduling
	}
	return models.GetDefaultSchedulingConfig()
}

// UpdateSchedulingConfig replaces the scheduling parameters and persists them
func (s *configService) UpdateSchedulingConfig(ctx context.Context, c models.SchedulingConfig) error {
	logger := ctxhelper.Logger(ctx)
	if c.SlotGranularityMinutes == 0 || c.WorkdayEndHour > 24 ||
		c.HistoryWeight < 0 || c.ClusterPenaltyWeight < 0 {
		return ErrIllegalWeights
	}
	logger.Info("Updating scheduling parameters")
	s.Lock()
	if s.config == nil {
		conf, err := models.GetDefaultConfig()
		if err != nil {
			s.Unlock()
			return errors.Wrap(err, "UpdateSchedulingConfig: Failed to create default config")
		}
		s.config = conf
	}
	s.config.Scheduling = c
	s.Unlock()
	return s.Write(ctx)
}

// Load loads the application config from its default file location
func (s *configService) Load(ctx context.Context) error {
	return s.LoadFromFile(ctx, s.configFilename)
}

// LoadFromFile loads the configuration from the given JSON file and returns it
func (s *configService) LoadFromFile(ctx context.Context, filename string) error {
	logger := ctxhelper.Logger(ctx)
	logger.WithField(log.FldFile, filename).Info("Loading configuration file")
	conf, err := models.GetDefaultConfig()
	if err != nil {
		return errors.Wrap(err, "LoadFromFile: Failed to create default config")
	}
	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "LoadFromFile: cannot load configuration file")
	}
	defer f.Close()
	if err = json.NewDecoder(f).Decode(&conf); err != nil {
		return errors.Wrap(err, "LoadFromFile: Failed to decode configuration file")
	}
	s.Lock()
	s.config = conf
	s.Unlock()
	return nil
}

// Write writes the current application configuration to the default file name
func (s *configService) Write(ctx context.Context) error {
	return s.WriteToFile(ctx, s.configFilename)
}

// WriteToFile writes the current application configuration to a JSON file
func (s *configService) WriteToFile(ctx context.Context, filename string) error {
	logger := ctxhelper.Logger(ctx)
	logger.WithField(log.FldFile, filename).Info("Writing configuration file")
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "WriteToFile: Cannot open configuration file '%s' to write to", filename)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	conf := s.GetConfig(ctx)
	if err := enc.Encode(&conf); err != nil {
		return errors.Wrap(err, "WriteToFile: Failed to serialize configuration data")
	}
	return nil
}

// GetConfig retuns the current application configuration
func (s *configService) GetConfig(ctx context.Context) models.AppConfig {
	s.RLock()
	defer s.RUnlock()
	var ret models.AppConfig
	if s.config != nil {
		ret = *s.config
	} else {
		conf, err := models.GetDefaultConfig()
		if err == nil {
			ret = *conf
		}
	}
	return ret
}
