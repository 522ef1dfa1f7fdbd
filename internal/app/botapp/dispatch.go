package botapp

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// dispatcher serializes update handling per user: one bounded queue and
// one worker goroutine per active user id, spawned lazily and reaped
// after the idle TTL. Different users run in parallel, events of one
// user run strictly in arrival order.
type dispatcher struct {
	logger    *zap.Logger
	handle    func(context.Context, tgbotapi.Update)
	queueSize int
	idleTTL   time.Duration

	mu     sync.Mutex
	queues map[int64]chan tgbotapi.Update
	wg     sync.WaitGroup
}

func newDispatcher(logger *zap.Logger, queueSize int, idleTTL time.Duration, handle func(context.Context, tgbotapi.Update)) *dispatcher {
	if queueSize <= 0 {
		queueSize = 16
	}
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}

	return &dispatcher{
		logger:    logger,
		handle:    handle,
		queueSize: queueSize,
		idleTTL:   idleTTL,
		queues:    make(map[int64]chan tgbotapi.Update),
	}
}

// Dispatch enqueues the update for the user's worker. Enqueue and worker
// removal both happen under the mutex, so an accepted update is always
// drained. A full queue drops the update instead of blocking the poll
// loop.
func (d *dispatcher) Dispatch(ctx context.Context, userID int64, update tgbotapi.Update) {
	if userID <= 0 {
		return
	}

	d.mu.Lock()
	queue, ok := d.queues[userID]
	if !ok {
		queue = make(chan tgbotapi.Update, d.queueSize)
		d.queues[userID] = queue
		d.wg.Add(1)
		go d.worker(ctx, userID, queue)
	}

	select {
	case queue <- update:
	default:
		d.logger.Warn("user update queue is full, dropping update", zap.Int64("user_id", userID))
	}
	d.mu.Unlock()
}

func (d *dispatcher) worker(ctx context.Context, userID int64, queue chan tgbotapi.Update) {
	defer d.wg.Done()

	idle := time.NewTimer(d.idleTTL)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			d.mu.Lock()
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		case update := <-queue:
			d.handle(ctx, update)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(d.idleTTL)
		case <-idle.C:
			d.mu.Lock()
			if len(queue) > 0 {
				d.mu.Unlock()
				idle.Reset(d.idleTTL)
				continue
			}
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
	}
}

// Wait blocks until every worker has exited. Meant for shutdown after
// ctx cancellation.
func (d *dispatcher) Wait() {
	d.wg.Wait()
}
