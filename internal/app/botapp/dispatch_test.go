package botapp

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: userID},
			Text: text,
		},
	}
}

func TestDispatcherKeepsPerUserOrder(t *testing.T) {
	const total = 200

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{})

	d := newDispatcher(zap.NewNop(), total, time.Minute, func(_ context.Context, u tgbotapi.Update) {
		mu.Lock()
		seen = append(seen, u.Message.Text)
		if len(seen) == total {
			close(done)
		}
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < total; i++ {
		d.Dispatch(ctx, 1, textUpdate(1, "msg-"+strconv.Itoa(i)))
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %d updates, handled %d", total, len(seen))
	}

	mu.Lock()
	defer mu.Unlock()
	for i, text := range seen {
		if text != "msg-"+strconv.Itoa(i) {
			t.Fatalf("update %d handled out of order: %s", i, text)
		}
	}
}

func TestDispatcherRunsUsersInParallel(t *testing.T) {
	release := make(chan struct{})
	secondRan := make(chan struct{})

	d := newDispatcher(zap.NewNop(), 4, time.Minute, func(_ context.Context, u tgbotapi.Update) {
		switch u.Message.From.ID {
		case 1:
			// Blocks until user 2 was handled. Deadlocks if users share
			// a worker.
			<-release
		case 2:
			close(secondRan)
			close(release)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d.Dispatch(ctx, 1, textUpdate(1, "a"))
	d.Dispatch(ctx, 2, textUpdate(2, "b"))

	select {
	case <-secondRan:
	case <-time.After(5 * time.Second):
		t.Fatalf("user 2 never handled while user 1 was busy")
	}
}

func TestDispatcherNeverRunsSameUserConcurrently(t *testing.T) {
	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0
	done := make(chan struct{})
	const total = 50

	handled := 0
	d := newDispatcher(zap.NewNop(), total, time.Minute, func(context.Context, tgbotapi.Update) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		inFlight--
		handled++
		if handled == total {
			close(done)
		}
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < total; i++ {
		d.Dispatch(ctx, 7, textUpdate(7, "x"))
	}

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("timed out waiting for updates")
	}

	mu.Lock()
	defer mu.Unlock()
	if maxInFlight != 1 {
		t.Fatalf("same-user updates overlapped, max in flight = %d", maxInFlight)
	}
}
