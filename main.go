package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	alumniconnect "github.com/FPTAlumniConnectGSU68/alumniconnect/internal"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/ctxhelper"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/log"
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/migrate"
	eventrepo "github.com/FPTAlumniConnectGSU68/alumniconnect/internal/repos/event/sqlite"
	majorrepo "github.com/FPTAlumniConnectGSU68/alumniconnect/internal/repos/major/inmem"
	sessionrepo "github.com/FPTAlumniConnectGSU68/alumniconnect/internal/repos/session/sqlite"
	userrepo "github.com/FPTAlumniConnectGSU68/alumniconnect/internal/repos/user/inmem"
	"github.com/jmoiron/sqlx"
	"github.com/kardianos/osext"
	_ "github.com/mattn/go-sqlite3" // Just needed for the sqlite driver
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	appName    = "AlumniConnect Scheduling"
	appVersion = "0.1.0"
	dbFile     = "scheduling.db"
)

// Checks and tries to create the given directory recursively (or panics if this fails)
func checkAndCreateDir(path string, logger *logrus.Entry) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if e, ok := err.(*os.PathError); ok && e.Err == syscall.ENOENT {
			logger.WithField(log.FldPath, path).Info("Directory does not exist - trying to create...")
			if err = os.MkdirAll(path, os.ModePerm); err != nil {
				logger.WithError(err).Fatal("Failed to create directory")
			}
			logger.Info("Directory created successfully")
		} else {
			logger.WithError(err).Fatal("Stat has failed")
		}
	} else {
		if !fileInfo.IsDir() {
			logger.Fatalf("'%s' is not a directory. Remove the plain file if you want to continue", path)
		}
	}
}

func main() {
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		panic(err)
	}

	configFile := flag.String(
		"config",
		filepath.Join(execDir, "config.json"),
		"The configuration file to load the application's configuration from",
	)
	flag.Parse()

	ctx := context.Background()

	// Initialize the logger
	logger := logrus.WithField(log.FldVersion, appVersion)
	logger.Infof("%s version %s is starting up...", appName, appVersion)
	ctx = context.WithValue(ctx, ctxhelper.KeyLogger, logger)

	// Load the main configuration file
	cs := alumniconnect.NewConfigService(*configFile)
	if err := cs.Load(ctx); err != nil {
		logger.WithError(err).Error("Cannot load config. Using defaults")
	}
	conf := cs.GetConfig(ctx)

	logger.Infof("Using '%s' as data directory", conf.DataDir)
	checkAndCreateDir(conf.DataDir, logger)

	// Set up the database connection and perform pending migrations
	dbFileName := path.Join(conf.DataDir, dbFile)
	var db *sqlx.DB
	if db, err = sqlx.Open("sqlite3", dbFileName); err != nil {
		logger.WithError(err).Fatal("Failed to open database connection")
	}
	logger.Info("Performing database migrations...")
	if err = migrate.ExecuteMigrationsOnDb(db, logger); err != nil {
		logger.WithError(err).Fatal("Database migration has failed. Please check database for consistency and try again.")
	}

	// The user and major directories are owned by the surrounding CRUD layer - this
	// service only resolves IDs through them, seeded from the configuration
	userRepo := userrepo.New(conf.Directory.Users)
	majorRepo := majorrepo.New(conf.Directory.Majors)

	eventRepo := eventrepo.New(db, logger)
	sessionRepo := sessionrepo.New(db, logger)

	schedSrv := alumniconnect.NewSchedulingService(eventRepo, majorRepo, cs, logger)
	evSrv := alumniconnect.NewEventService(eventRepo, userRepo, majorRepo, schedSrv, logger)
	mentSrv := alumniconnect.NewMentorshipService(sessionRepo, userRepo, logger)

	httpLogger := logger.WithField(log.FldTransport, "HTTP")

	h := alumniconnect.MakeHTTPHandler(
		evSrv,
		schedSrv,
		mentSrv,
		cs,
		httpLogger,
	)

	// Start listening
	errs := make(chan error)
	stopSweep := make(chan struct{})

	// Listen for stop signals that will end the service
	go func() {
		c := make(chan os.Signal, 2)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		err := fmt.Errorf("%s", <-c)
		logger.Info("Caught signal to stop. Shutting down.")
		close(stopSweep)
		errs <- err
	}()

	// Periodic auto-cancel sweep. The sweep is idempotent, so an extra on-demand run via
	// the API while the ticker fires is harmless
	go func() {
		interval := time.Duration(conf.Scheduling.SweepIntervalMinutes) * time.Minute
		if interval <= 0 {
			interval = 15 * time.Minute
		}
		logger.Infof("Starting auto-cancel sweep every %s", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := mentSrv.RunAutoCancelSweep(ctx, time.Now()); err != nil {
					logger.WithError(err).Error("Auto-cancel sweep failed")
				}
			case <-stopSweep:
				return
			}
		}
	}()

	go func() {
		httpLogger.WithField("addr", conf.ListenAddress).Info("Starting listening port")
		errs <- http.ListenAndServe(conf.ListenAddress, h)
	}()

	// Watchdog for systemd
	go func() {
		interval, err := daemon.SdWatchdogEnabled(false)
		if err != nil || interval == 0 {
			return
		}
		logger.Info("Activating systemd watchdog goroutine")
		port := strings.Split(conf.ListenAddress, ":")[1]
		url := fmt.Sprintf("http://127.0.0.1:%s/alive", port)
		for {
			if _, err := http.Get(url); err == nil {
				daemon.SdNotify(false, "WATCHDOG=1")
			}
			time.Sleep(interval / 3)
		}
	}()

	// Notify systemd that we are ready to go (if available)
	daemon.SdNotify(false, "READY=1")

	logger.WithError(<-errs).Error("Shutdown complete")
}
