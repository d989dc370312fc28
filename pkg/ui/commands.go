package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vctt94/holdemtable/pkg/client"
	"github.com/vctt94/holdemtable/pkg/poker"
)

// Message types fed back into Update.
type serverMsg client.Message
type errorMsg error
type streamErrorMsg struct{ err error }
type disconnectedMsg struct{}

// actionSentMsg confirms a request left the client. The server answers on
// the update stream.
type actionSentMsg string

// TableClient is what the UI needs from a connection. *client.PokerClient
// implements it.
type TableClient interface {
	BuyIn(ctx context.Context, seat int, amount int64) error
	Act(ctx context.Context, action poker.ActionType, amount int64) error
	SitOut(ctx context.Context) error
	SitIn(ctx context.Context) error
	AddChips(ctx context.Context, amount int64) error
}

// CommandDispatcher dispatches commands from the UI to the table client.
type CommandDispatcher struct {
	ctx     context.Context
	tc      TableClient
	updates <-chan client.Message
	errs    <-chan error
	done    <-chan struct{}
}

// NewCommandDispatcher creates a dispatcher that reads pc's update stream.
func NewCommandDispatcher(ctx context.Context, pc *client.PokerClient) *CommandDispatcher {
	return &CommandDispatcher{
		ctx:     ctx,
		tc:      pc,
		updates: pc.UpdatesCh,
		errs:    pc.ErrorsCh,
		done:    pc.Done(),
	}
}

// listenCmd waits for the next thing the server says.
func (d *CommandDispatcher) listenCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-d.updates:
			return serverMsg(msg)
		case err := <-d.errs:
			return streamErrorMsg{err}
		case <-d.done:
			return disconnectedMsg{}
		case <-d.ctx.Done():
			return disconnectedMsg{}
		}
	}
}

func (d *CommandDispatcher) send(what string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(d.ctx); err != nil {
			return errorMsg(err)
		}
		return actionSentMsg(what)
	}
}

func (d *CommandDispatcher) buyInCmd(seat int, amount int64) tea.Cmd {
	return d.send(fmt.Sprintf("Buying in for %d at seat %d", amount, seat), func(ctx context.Context) error {
		return d.tc.BuyIn(ctx, seat, amount)
	})
}

func (d *CommandDispatcher) actCmd(action poker.ActionType, amount int64) tea.Cmd {
	what := string(action)
	if action == poker.ActionRaise {
		what = fmt.Sprintf("raise to %d", amount)
	}
	return d.send(what, func(ctx context.Context) error {
		return d.tc.Act(ctx, action, amount)
	})
}

func (d *CommandDispatcher) sitOutCmd() tea.Cmd {
	return d.send("Sitting out", d.tc.SitOut)
}

func (d *CommandDispatcher) sitInCmd() tea.Cmd {
	return d.send("Sitting in", d.tc.SitIn)
}

func (d *CommandDispatcher) addChipsCmd(amount int64) tea.Cmd {
	return d.send(fmt.Sprintf("Adding %d chips", amount), func(ctx context.Context) error {
		return d.tc.AddChips(ctx, amount)
	})
}
