package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vctt94/holdemtable/pkg/client"
	"github.com/vctt94/holdemtable/pkg/logging"
	"github.com/vctt94/holdemtable/pkg/poker"
	"github.com/vctt94/holdemtable/pkg/rpc/pokerws"
	"github.com/vctt94/holdemtable/pkg/utils"
)

// Common flags
var (
	serverURL = flag.String("url", "", "Base URL of the table server (env POKER_URL)")
	name      = flag.String("name", "", "Display name at the table")
	logFile   = flag.String("logfile", "", "Path to log file")
	debug     = flag.String("debug", "warn", "Debug level for logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [global flags] <command> [args]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  state                                Print the public table state (JSON)")
		fmt.Fprintln(os.Stderr, "  last-winners                         Print the last hand result")
		fmt.Fprintln(os.Stderr, "  stream                               Stream table messages (JSON lines)")
		fmt.Fprintln(os.Stderr, "  autoplay-one-hand [--seat N --buyin N] Buy in and check/call one hand")
		fmt.Fprintln(os.Stderr, "  ping                                 Round-trip a ping")
		fmt.Fprintln(os.Stderr, "\nGlobal flags:")
		flag.PrintDefaults()
	}

	// Suppress default flag errors to avoid noisy usage on subcommands
	flag.CommandLine.SetOutput(io.Discard)
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	// A missing .env is fine.
	_ = godotenv.Load()
	if *serverURL == "" {
		*serverURL = os.Getenv("POKER_URL")
	}
	if *serverURL == "" {
		*serverURL = "http://127.0.0.1:8080"
	}

	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:    *logFile,
		DebugLevel: *debug,
	})
	if err != nil {
		fatalErr(err)
	}
	defer logBackend.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	args := flag.Args()[1:]
	switch cmd := flag.Arg(0); cmd {
	case "state":
		err = handleState(ctx)

	case "last-winners":
		err = handleLastWinners(ctx)

	case "stream", "autoplay-one-hand", "ping":
		var pcli *client.PokerClient
		pcli, err = client.Dial(ctx, client.Config{
			ServerURL: *serverURL,
			Name:      *name,
			Log:       logBackend.Logger("CLNT"),
		})
		if err != nil {
			break
		}
		defer pcli.Close()
		switch cmd {
		case "stream":
			err = handleStream(ctx, pcli)
		case "autoplay-one-hand":
			err = handleAutoplayOneHand(ctx, pcli, args)
		default:
			err = handlePing(ctx, pcli)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fatalErr(err)
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func fatalErr(err error) {
	fatal(err.Error())
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func handleState(ctx context.Context) error {
	gs, err := client.FetchTable(ctx, *serverURL)
	if err != nil {
		return err
	}
	return printJSON(gs)
}

func handleLastWinners(ctx context.Context) error {
	gs, err := client.FetchTable(ctx, *serverURL)
	if err != nil {
		return err
	}
	res := gs.LastResult
	if res == nil {
		return errors.New("last-winners: no hand has been settled yet")
	}
	fmt.Printf("Hand #%d  board: %s\n", res.HandNumber, utils.FormatCards(res.Board))
	switch {
	case res.Refunded:
		fmt.Println("Hand was refunded")
	case res.Uncontested:
		fmt.Println("Pot was uncontested")
	}
	for _, w := range res.Winners {
		desc := w.HandDescription
		if desc == "" {
			desc = "-"
		}
		fmt.Printf("  %-20s %8d  %s\n", w.Name, w.Amount, desc)
	}
	return nil
}

func handleStream(ctx context.Context, pcli *client.PokerClient) error {
	enc := json.NewEncoder(os.Stdout)
	for {
		select {
		case msg := <-pcli.UpdatesCh:
			if err := enc.Encode(msg); err != nil {
				return err
			}
		case err := <-pcli.ErrorsCh:
			return err
		case <-pcli.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func handlePing(ctx context.Context, pcli *client.PokerClient) error {
	start := time.Now()
	if err := pcli.Ping(ctx); err != nil {
		return err
	}
	if _, err := waitMessage(ctx, pcli, pokerws.MsgPong); err != nil {
		return err
	}
	fmt.Printf("pong in %v\n", time.Since(start).Round(time.Microsecond))
	return nil
}

func waitMessage(ctx context.Context, pcli *client.PokerClient, typ string) (client.Message, error) {
	for {
		select {
		case msg := <-pcli.UpdatesCh:
			if msg.Type == typ {
				return msg, nil
			}
		case err := <-pcli.ErrorsCh:
			return client.Message{}, err
		case <-pcli.Done():
			return client.Message{}, client.ErrClosed
		case <-ctx.Done():
			return client.Message{}, ctx.Err()
		}
	}
}

func handleAutoplayOneHand(ctx context.Context, pcli *client.PokerClient, args []string) error {
	fs := flag.NewFlagSet("autoplay-one-hand", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	seat := fs.Int("seat", -1, "Seat to take (first free seat if unset)")
	buyIn := fs.String("buyin", "", "Buy-in amount (table's suggested buy-in if unset)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("autoplay-one-hand: %w", err)
	}

	info := pcli.TableInfo
	if *seat < 0 {
		if len(info.AvailableSeats) == 0 {
			return errors.New("autoplay-one-hand: table is full")
		}
		*seat = info.AvailableSeats[0]
	}
	amount := info.SuggestedBuyIn
	if *buyIn != "" {
		n, err := strconv.ParseInt(*buyIn, 10, 64)
		if err != nil {
			return fmt.Errorf("autoplay-one-hand: bad buy-in: %w", err)
		}
		amount = n
	}
	if err := pcli.BuyIn(ctx, *seat, amount); err != nil {
		return err
	}

	deadline := time.NewTimer(4 * time.Minute)
	defer deadline.Stop()

	var hand uint64
	var lastActed string
	for {
		select {
		case <-deadline.C:
			return errors.New("autoplay timeout")
		case msg := <-pcli.UpdatesCh:
			switch msg.Type {
			case pokerws.MsgBuyInError, pokerws.MsgActionRejected, pokerws.MsgError:
				return fmt.Errorf("%s: %s", msg.Code, msg.Reason)
			case pokerws.MsgGameState:
			default:
				continue
			}
			gs := pcli.State()
			me, seated := gs.PlayerByID(pcli.ID)
			if !seated || me.Seat < 0 {
				continue
			}
			if hand == 0 && gs.Phase.IsBetting() && me.HasCards {
				hand = gs.HandNumber
				fmt.Printf("Hand #%d  hole: %s\n", hand, utils.FormatCards(me.HoleCards))
			}
			if hand != 0 && gs.HandNumber == hand && gs.Phase == poker.Settling {
				fmt.Printf("Board: %s  chips: %d\n", utils.FormatCards(gs.CommunityCards), me.Chips)
				return nil
			}
			if !pcli.IsMyTurn() {
				continue
			}
			// One action per turn; the server echoes state more than once.
			turn := fmt.Sprintf("%d/%v/%d/%d", gs.HandNumber, gs.Phase, gs.CurrentBet, me.CurrentBet)
			if turn == lastActed {
				continue
			}
			lastActed = turn
			act := pcli.Check
			if pcli.ToCall() > 0 {
				act = pcli.Call
			}
			if err := act(ctx); err != nil {
				return err
			}
		case err := <-pcli.ErrorsCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
