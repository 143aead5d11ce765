package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/queue"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// recordingSender records every send and can be told to fail web pushes for
// specific rooms.
type recordingSender struct {
	mu       sync.Mutex
	web      []map[string]string
	app      []string
	failWeb  map[string]error
	delivery chan string
}

func newRecordingSender() *recordingSender {
	return &recordingSender{
		failWeb:  make(map[string]error),
		delivery: make(chan string, 16),
	}
}

func (r *recordingSender) SendWebBatch(_ context.Context, tokens []string, data map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room := data["roomId"]
	if err, ok := r.failWeb[room]; ok {
		r.delivery <- "fail:" + room
		return err
	}
	r.web = append(r.web, data)
	r.delivery <- "web:" + room
	return nil
}

func (r *recordingSender) SendAppSingle(_ context.Context, token, _, _ string, _ map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.app = append(r.app, token)
	r.delivery <- "app:" + token
	return nil
}

func waitFor(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func webEnvelope(room string) live.NotificationEnvelope {
	return live.NotificationEnvelope{
		Web: live.WebNotification{
			Tokens: []string{"tok-1"},
			Data:   map[string]string{"roomId": room},
		},
	}
}

func TestWorker_DispatchesEnvelopes(t *testing.T) {
	q := queue.NewNotificationQueue()
	sender := newRecordingSender()
	w := NewWorker(q, sender, zerolog.Nop())

	w.Start(context.Background())
	t.Cleanup(w.Stop)

	q.Enqueue(webEnvelope("101"))
	waitFor(t, sender.delivery, "web:101")

	q.Enqueue(live.NotificationEnvelope{
		App: live.AppNotification{Token: "app-tok", Title: "New message", Body: "hi"},
	})
	waitFor(t, sender.delivery, "app:app-tok")
}

func TestWorker_FailureDoesNotStopSubsequentDispatch(t *testing.T) {
	q := queue.NewNotificationQueue()
	sender := newRecordingSender()
	sender.failWeb["bad"] = errors.New("provider exploded")
	w := NewWorker(q, sender, zerolog.Nop())

	w.Start(context.Background())
	t.Cleanup(w.Stop)

	q.Enqueue(webEnvelope("bad"))
	q.Enqueue(webEnvelope("good"))

	waitFor(t, sender.delivery, "fail:bad")
	waitFor(t, sender.delivery, "web:good")

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.web, 1)
	assert.Equal(t, "good", sender.web[0]["roomId"])
}

func TestWorker_BothHalvesAttempted(t *testing.T) {
	q := queue.NewNotificationQueue()
	sender := newRecordingSender()
	w := NewWorker(q, sender, zerolog.Nop())

	w.Start(context.Background())
	t.Cleanup(w.Stop)

	q.Enqueue(live.NotificationEnvelope{
		Web: live.WebNotification{Tokens: []string{"tok"}, Data: map[string]string{"roomId": "101"}},
		App: live.AppNotification{Token: "app-tok", Title: "t", Body: "b"},
	})

	waitFor(t, sender.delivery, "web:101")
	waitFor(t, sender.delivery, "app:app-tok")
}

func TestWorker_StopExitsCleanly(t *testing.T) {
	q := queue.NewNotificationQueue()
	w := NewWorker(q, newRecordingSender(), zerolog.Nop())

	w.Start(context.Background())

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
