package main

import (
	"flag"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/workoutnotes/internal/config"
	"github.com/2beens/workoutnotes/internal/db"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev ]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	down := flag.Int("down", 0, "number of migrations to roll back, 0 applies all pending ones")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %s", err)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	secrets, err := config.LoadSecrets()
	if err != nil {
		log.Fatalf("load secrets: %s", err)
	}

	dsn := db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: secrets.PostgresPassword,
	}.DSN()

	if *down > 0 {
		if err := db.MigrateDown(dsn, *down); err != nil {
			log.Fatalf("migrate down: %s", err)
		}
		log.Infof("rolled back %d migration(s)", *down)
		return
	}

	if err := db.MigrateUp(dsn); err != nil {
		log.Fatalf("migrate up: %s", err)
	}
	log.Infoln("migrations applied")
}
