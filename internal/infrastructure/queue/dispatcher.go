package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// DeliverFunc hands one change event to the subscription layer.
type DeliverFunc func(ev domain.ChangeEvent)

// Dispatcher fans change events out to a fixed set of workers using
// consistent hashing on (table, owner), guaranteeing in-order delivery of one
// owner's changes while keeping unrelated owners off each other's queue.
type Dispatcher struct {
	workers []chan domain.ChangeEvent
	deliver DeliverFunc
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, deliver DeliverFunc, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.ChangeEvent, numWorkers),
		deliver: deliver,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ChangeEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its shard. The call is
// non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(ev domain.ChangeEvent) {
	d.workers[d.shardIndex(ev)] <- ev
}

// shardIndex maps an event deterministically to a worker index.
func (d *Dispatcher) shardIndex(ev domain.ChangeEvent) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(ev.Table))
	_, _ = h.Write([]byte(ev.OwnerID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ev)
			d.log.Debug().
				Str("table", ev.Table).
				Str("type", string(ev.Type)).
				Int("worker_id", id).
				Msg("change event delivered")
		}
	}
}
