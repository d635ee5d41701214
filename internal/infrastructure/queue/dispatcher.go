package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/review-api/internal/core/ports"
	"github.com/yamdb/review-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 10 * time.Second
)

// Dispatcher routes confirmation code notifications to a fixed set of workers
// using consistent hashing on the username, so codes for one user are
// delivered in the order they were issued.
type Dispatcher struct {
	workers []chan ports.Notification
	mailer  ports.Mailer
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Notification, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. They run until Stop.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Stop refuses new notifications, lets the workers deliver everything
// already queued and waits for them. It returns ctx.Err() if ctx ends first;
// the workers keep draining in the background in that case.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue hands n to the worker responsible for its username. It never
// blocks: when that worker's buffer is full, or the dispatcher is stopped,
// the notification is dropped.
func (d *Dispatcher) Enqueue(n ports.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	idx := d.shardIndex(n.Username)
	if d.closed {
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Error().Str("username", n.Username).Msg("dispatcher stopped, code dropped")
		return
	}
	select {
	case d.workers[idx] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Error().Str("username", n.Username).Int("worker_id", idx).Msg("notification queue full, code dropped")
	}
}

// shardIndex maps a username deterministically to a worker index.
func (d *Dispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan ports.Notification) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for n := range ch {
		metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		if err := d.send(n); err != nil {
			metrics.NotificationsTotal.WithLabelValues("failed").Inc()
			d.log.Error().Err(err).
				Str("username", n.Username).
				Int("worker_id", id).
				Msg("confirmation code delivery failed")
			continue
		}
		metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	}
}

func (d *Dispatcher) send(n ports.Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	return d.mailer.Send(ctx, n)
}
