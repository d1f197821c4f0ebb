// Package migrate handles SQL database migration for the internal scheduling database
package migrate

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

var migrations []dbMigration

type dbMigration struct {
	Version uint
	Queries []string
}

// Execute runs the current DB migration on the given database
func (mig *dbMigration) Execute(db *sqlx.DB, logger *logrus.Entry) error {
	// Check if the migration has already run
	query := `SELECT success FROM Migrations WHERE version = $1`
	var success = false
	err := db.QueryRow(query, mig.Version).Scan(&success)
	if err != nil {
		switch {
		case err != sql.ErrNoRows:
			logger.WithError(err).Error("Failed to fetch version information")
			return err
		}
	}
	if !success {
		// We need to execute this migration
		logger.Infof("Executing DB migration #%d", mig.Version)
		for i, query := range mig.Queries {
			logger.Infof("Query %d of %d...", (i + 1), len(mig.Queries))
			if _, err := db.Exec(query); err != nil {
				logger.WithError(err).Errorf("Query #%d failed", (i + 1))
				db.Exec(`REPLACE INTO Migrations(version, success) VALUES($1, 0)`, mig.Version)
				return err
			}
		}
		// Queries executed successfully - save our status
		db.Exec(`REPLACE INTO Migrations(version, success) VALUES($1, 1)`, mig.Version)
	}
	return nil
}

// ExecuteMigrationsOnDb executes the database migrations on the given database instance
func ExecuteMigrationsOnDb(db *sqlx.DB, logger *logrus.Entry) error {
	// Create the migrations table if it does not exist, yet
	query := `CREATE TABLE IF NOT EXISTS Migrations (
                version   INTEGER NOT NULL,
                success   INTEGER NOT NULL DEFAULT 0,
                PRIMARY KEY(version)
            )`
	if _, err := db.Exec(query); err != nil {
		logger.WithError(err).Error("Failed to create migrations table")
		return err
	}
	for _, mig := range migrations {
		if err := mig.Execute(db, logger); err != nil {
			logger.WithError(err).Errorf("Failed to execute migration #%d", mig.Version)
			return err
		}
	}
	return nil
}

// For now, the migrations are part of the package...
func init() {
	migrations = []dbMigration{
		{
			Version: 1,
			Queries: []string{
				`CREATE TABLE "Events" (
                    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                    name VARCHAR(255) NOT NULL,
                    description TEXT NOT NULL DEFAULT '',
                    image VARCHAR(255) NOT NULL DEFAULT '',
                    status VARCHAR(20) NOT NULL DEFAULT 'Draft',
                    startsAt DATETIME NOT NULL,
                    endsAt DATETIME NOT NULL,
                    location VARCHAR(255) NOT NULL DEFAULT '',
                    organizerId INTEGER NOT NULL,
                    majorId INTEGER NOT NULL,
                    createdAt DATETIME NOT NULL,
                    updatedAt DATETIME NOT NULL
                )`,
				`CREATE INDEX "idxEventsOrganizer" ON Events (organizerId, startsAt)`,
				`CREATE INDEX "idxEventsMajor" ON Events (majorId, startsAt)`,
				`CREATE INDEX "idxEventsStatus" ON Events (status)`,
				`CREATE TABLE "EventTimelines" (
                    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                    eventId INTEGER NOT NULL REFERENCES Events(id),
                    title VARCHAR(255) NOT NULL,
                    description TEXT NOT NULL DEFAULT '',
                    speaker VARCHAR(255) NOT NULL DEFAULT '',
                    startsAt DATETIME NOT NULL,
                    endsAt DATETIME NOT NULL
                )`,
				`CREATE INDEX "idxTimelinesEvent" ON EventTimelines (eventId, startsAt)`,
				`CREATE TABLE "UserJoinEvents" (
                    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                    eventId INTEGER NOT NULL REFERENCES Events(id),
                    userId INTEGER NOT NULL,
                    content TEXT NOT NULL DEFAULT '',
                    rating INTEGER NOT NULL DEFAULT 0,
                    joinedAt DATETIME NOT NULL,
                    UNIQUE(eventId, userId)
                )`,
				`CREATE TABLE "Schedules" (
                    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                    mentorshipId INTEGER NOT NULL,
                    mentorId INTEGER NOT NULL,
                    alumniId INTEGER NOT NULL,
                    startsAt DATETIME NOT NULL,
                    endsAt DATETIME NOT NULL,
                    content TEXT NOT NULL DEFAULT '',
                    status VARCHAR(20) NOT NULL DEFAULT 'Pending',
                    rating INTEGER NOT NULL DEFAULT 0,
                    ratingComment TEXT NOT NULL DEFAULT '',
                    createdAt DATETIME NOT NULL,
                    updatedAt DATETIME NOT NULL
                )`,
				`CREATE INDEX "idxSchedulesMentor" ON Schedules (mentorId, startsAt)`,
				`CREATE INDEX "idxSchedulesStatus" ON Schedules (status, startsAt)`,
			},
		},
	}
}
