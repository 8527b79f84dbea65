package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/sharmers-menus/tests/helpers"
	"github.com/sirupsen/logrus"
)

const usage = `
Run the sharmers-menus testcontainers with the environment variables from the .env file.
By default the database, Authorizer and menus service are started. With -db only the
database is started and initialized, and the settings to reach it are printed.

Usage:

testcontainers [-h] [-db] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -db -f /path/to/something/.env
`

func main() {
	var showHelp, dbOnly bool
	var envFilename string
	flag.BoolVar(&showHelp, "h", false, "show help")
	flag.BoolVar(&dbOnly, "db", false, "start only the database")
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	if showHelp {
		fmt.Print(usage + "\n")
		return
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if envFilename != "" {
		log.WithField("file", envFilename).Info("Loading environment variables")
		if err := godotenv.Load(envFilename); err != nil {
			log.WithError(err).Fatal("Failed to load environment variables")
		}
	} else {
		log.Info("No environment file specified, using current environment variables")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var testContainers *helpers.TestContainers
	if dbOnly {
		tc, cfg, err := helpers.CreateDatabaseContainer(nil)
		if err != nil {
			log.WithError(err).Fatal("Failed to create database container")
		}
		testContainers = tc
		fmt.Printf("DB_TYPE=%s\nDB_HOST=%s\nDB_PORT=%s\n", cfg.DBType, cfg.DBHost, cfg.DBPort)
	} else {
		tc, err := helpers.CreateAllTestContainers(nil)
		if err != nil {
			log.WithError(err).Fatal("Failed to create test containers")
		}
		testContainers = tc
	}

	log.Info("Containers running, press Ctrl+C to stop")
	sig := <-sigs
	log.WithField("signal", sig.String()).Info("Terminating test containers")
	testContainers.Terminate(nil)
}
