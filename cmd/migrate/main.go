package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/config"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	direction := fs.String("direction", postgres.DirectionUp, "Migration direction: up or down")
	steps := fs.Int("steps", 0, "Number of migration steps (0 = all)")
	forceDirty := fs.Bool("force-dirty", false, "If the database is dirty, force it to the current version and exit")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("migrate: failed to load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("migrate: failed to connect to PostgreSQL")
	}
	defer conn.Close()

	m, err := postgres.NewMigrator(conn.DB, cfg.Database.MigrationsPath)
	if err != nil {
		logrus.WithError(err).Fatal("migrate: failed to create migrator")
	}

	if *forceDirty {
		v, err := postgres.ForceDirty(m)
		if err != nil {
			logrus.WithError(err).Fatal("migrate: failed to force version")
		}
		logrus.WithField("version", v).Info("migrate: database is clean")
		return
	}

	if err := postgres.ApplyMigrations(m, *direction, *steps); err != nil {
		logrus.WithError(err).Fatal("migrate: failed")
	}
}
