package poker

import (
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishEventNeverBlocks(t *testing.T) {
	ch := make(chan TableEvent, 1)
	m := NewTableEventManager(slog.Disabled, ch)

	m.PublishEvent(EventNotification, "", Notification{Kind: NotifyDealing})
	m.PublishEvent(EventNotification, "", Notification{Kind: NotifyPhaseChange})

	require.Len(t, ch, 1)
	ev := <-ch
	assert.Equal(t, NotifyDealing, ev.Payload.(Notification).Kind)

	m.setEventChannel(nil)
	m.PublishEvent(EventGameState, "", nil)
}

func TestHandEmitsNotifications(t *testing.T) {
	tbl, _ := newTestTable(t, nil)
	ch := make(chan TableEvent, 64)
	tbl.eventManager.setEventChannel(ch)
	ps := startHand(t, tbl, 1000, 1000)
	act(t, tbl, ps[0], ActionFold, 0)

	var kinds []NotificationKind
	var end Notification
	for len(ch) > 0 {
		ev := <-ch
		require.Equal(t, EventNotification, ev.Type)
		n := ev.Payload.(Notification)
		kinds = append(kinds, n.Kind)
		if n.Kind == NotifyGameEnd {
			end = n
		}
	}
	assert.Equal(t, []NotificationKind{
		NotifyDealing,
		NotifyPhaseChange,
		NotifyActionRequired,
		NotifyGameEnd,
	}, kinds)
	assert.Equal(t, "P1", end.Winner)
	assert.Equal(t, int64(5), end.NextGameCountdown)
	assert.Equal(t, Settling, end.Phase)
}
