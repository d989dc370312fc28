package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/vctt94/holdemtable/pkg/logging"
	"github.com/vctt94/holdemtable/pkg/poker"
	"github.com/vctt94/holdemtable/pkg/server"
	"github.com/vctt94/holdemtable/pkg/utils"
)

const shutdownTimeout = 5 * time.Second

// envString returns the POKER_<key> environment value or def.
func envString(key, def string) string {
	if v, ok := os.LookupEnv("POKER_" + key); ok && v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v, err := strconv.ParseInt(envString(key, ""), 10, 64); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(envString(key, "")); err == nil {
		return v
	}
	return def
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pokersrv: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; anything else is worth reporting.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	def := poker.DefaultTableConfig()
	var (
		host       string
		port       int
		portFile   string
		dataDir    string
		logFile    string
		debugLevel string
		origins    string
		turnSecs   int64
		cfg        poker.TableConfig
	)
	flag.StringVar(&host, "host", envString("HOST", "127.0.0.1"), "Host to listen on")
	flag.IntVar(&port, "port", int(envInt64("PORT", 8080)), "Port to listen on (0 for random free port)")
	flag.StringVar(&portFile, "portfile", envString("PORTFILE", ""), "If set, write selected port to this file")
	flag.StringVar(&dataDir, "datadir", envString("DATADIR", ""), "Data directory; logs go to <datadir>/logs")
	flag.StringVar(&logFile, "logfile", envString("LOGFILE", ""), "Log file path (default <datadir>/logs/pokersrv.log when datadir is set)")
	flag.StringVar(&debugLevel, "debuglevel", envString("DEBUGLEVEL", "info"), "Logging level: trace, debug, info, warn, error, or SUBSYS=level pairs")
	flag.StringVar(&origins, "origins", envString("ORIGINS", ""), "Comma separated origin patterns allowed to open a socket")
	flag.Int64Var(&cfg.Seed, "seed", envInt64("SEED", 0), "Deterministic RNG seed for decks (0 = random)")
	flag.IntVar(&cfg.MaxSeats, "maxseats", int(envInt64("MAXSEATS", int64(def.MaxSeats))), "Number of seats (2-6)")
	flag.Int64Var(&cfg.SmallBlind, "smallblind", envInt64("SMALLBLIND", def.SmallBlind), "Small blind")
	flag.Int64Var(&cfg.BigBlind, "bigblind", envInt64("BIGBLIND", def.BigBlind), "Big blind")
	flag.Int64Var(&cfg.MinBuyIn, "minbuyin", envInt64("MINBUYIN", def.MinBuyIn), "Minimum buy-in")
	flag.Int64Var(&cfg.SuggestedBuyIn, "suggestedbuyin", envInt64("SUGGESTEDBUYIN", def.SuggestedBuyIn), "Suggested buy-in")
	flag.Int64Var(&cfg.MaxBuyIn, "maxbuyin", envInt64("MAXBUYIN", def.MaxBuyIn), "Maximum buy-in (0 = no maximum)")
	flag.Int64Var(&turnSecs, "turntime", envInt64("TURNTIME", int64(def.TurnTimeLimit/time.Second)), "Seconds a player has to act (0 disables the timer)")
	flag.DurationVar(&cfg.StreetDelay, "streetdelay", envDuration("STREETDELAY", def.StreetDelay), "Pause between streets during an all-in runout")
	flag.DurationVar(&cfg.NextHandDelay, "nexthanddelay", envDuration("NEXTHANDDELAY", def.NextHandDelay), "Pause between settlement and the next deal")
	flag.Parse()
	cfg.TurnTimeLimit = time.Duration(turnSecs) * time.Second

	if dataDir != "" {
		if err := utils.EnsureDataDirExists(dataDir); err != nil {
			return err
		}
		if logFile == "" {
			logFile = filepath.Join(dataDir, "logs", "pokersrv.log")
		}
	}

	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:    logFile,
		DebugLevel: debugLevel,
	})
	if err != nil {
		return err
	}
	defer logBackend.Close()
	log := logBackend.Logger("MAIN")

	cfg.Log = logBackend.Logger("TABL")
	engine, err := poker.NewEngine(cfg)
	if err != nil {
		return err
	}

	srvCfg := server.Config{Log: logBackend.Logger("SRVR")}
	if origins != "" {
		srvCfg.OriginPatterns = strings.Split(origins, ",")
	}
	srv := server.NewServer(engine, srvCfg)

	lis, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	// Optionally write chosen port
	if portFile != "" {
		_, p, _ := net.SplitHostPort(lis.Addr().String())
		if err := os.WriteFile(portFile, []byte(p), 0600); err != nil {
			lis.Close()
			return fmt.Errorf("failed to write port file: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return engine.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		log.Infof("Table server listening on %s (blinds %d/%d, %d seats)",
			lis.Addr(), cfg.SmallBlind, cfg.BigBlind, cfg.MaxSeats)
		if err := httpSrv.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Errorf("Server stopped: %v", err)
		return err
	}
	return nil
}
