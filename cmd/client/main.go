package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/vctt94/holdemtable/pkg/client"
	"github.com/vctt94/holdemtable/pkg/logging"
	"github.com/vctt94/holdemtable/pkg/ui"
	"github.com/vctt94/holdemtable/pkg/utils"
)

func main() {
	var (
		serverURL string
		name      string
		dataDir   string
		debug     string
	)
	flag.StringVar(&serverURL, "url", "", "Base URL of the table server (env POKER_URL)")
	flag.StringVar(&name, "name", os.Getenv("USER"), "Display name at the table")
	flag.StringVar(&dataDir, "datadir", filepath.Join(os.TempDir(), "holdemclient"), "Directory for client logs")
	flag.StringVar(&debug, "debug", "info", "Debug level for logging")
	flag.Parse()

	_ = godotenv.Load()
	if serverURL == "" {
		serverURL = os.Getenv("POKER_URL")
	}
	if serverURL == "" {
		serverURL = "http://127.0.0.1:8080"
	}

	if err := utils.EnsureDataDirExists(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Data dir error: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs only go to the file.
	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:    filepath.Join(dataDir, "logs", "client.log"),
		DebugLevel: debug,
		Quiet:      true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging error: %v\n", err)
		os.Exit(1)
	}
	defer logBackend.Close()
	log := logBackend.Logger("CLNT")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Infof("Connecting to %s as %q", serverURL, name)
	pc, err := client.Dial(ctx, client.Config{
		ServerURL: serverURL,
		Name:      name,
		Log:       log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to join table: %v\n", err)
		os.Exit(1)
	}
	defer pc.Close()
	log.Infof("Using player ID: %s", pc.ID)

	if err := ui.Run(ctx, pc); err != nil {
		log.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
	}
}
