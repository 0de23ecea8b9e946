package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/api/metrics"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/infrastructure/queue"
)

// feedTopic is the single Redis pub/sub topic all change events travel on.
// Logical channels are multiplexed on top of it.
const feedTopic = "changefeed"

// ChangePublisher publishes row-level change events onto the feed topic.
type ChangePublisher struct {
	client *redis.Client
}

func NewChangePublisher(client *redis.Client) *ChangePublisher {
	return &ChangePublisher{client: client}
}

func (p *ChangePublisher) PublishChange(ctx context.Context, ev domain.ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	if err := p.client.Publish(ctx, feedTopic, data).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

// ChangeFeed implements ports.ChangeFeed over one Redis pub/sub connection.
// Inbound messages are fanned out by a sharded dispatcher to every logical
// channel whose registrations match.
type ChangeFeed struct {
	client *redis.Client
	log    zerolog.Logger

	dispatcher *queue.Dispatcher
	pubsub     *redis.PubSub
	cancel     context.CancelFunc

	mu       sync.Mutex
	channels map[string]*feedChannel
	started  bool
}

func NewChangeFeed(client *redis.Client, log zerolog.Logger) *ChangeFeed {
	f := &ChangeFeed{
		client:   client,
		log:      log,
		channels: make(map[string]*feedChannel),
	}
	f.dispatcher = queue.NewDispatcher(0, f.dispatch, log)
	return f
}

// Start opens the transport subscription and the worker pool. Call once.
func (f *ChangeFeed) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.pubsub = f.client.Subscribe(runCtx, feedTopic)

	// A failed initial subscribe should surface at startup, not on first message.
	if _, err := f.pubsub.Receive(runCtx); err != nil {
		cancel()
		_ = f.pubsub.Close()
		return fmt.Errorf("changefeed subscribe: %w", err)
	}

	f.dispatcher.Start(runCtx)
	go f.receiveLoop(runCtx)
	f.started = true
	return nil
}

func (f *ChangeFeed) receiveLoop(ctx context.Context) {
	retry := backoff.NewExponentialBackOff()
	retry.MaxElapsedTime = 0 // keep receiving until shutdown

	for {
		msg, err := f.pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			wait := retry.NextBackOff()
			f.log.Warn().Err(err).Dur("retry_in", wait).Msg("changefeed receive failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}
		retry.Reset()

		var ev domain.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			f.log.Warn().Err(err).Msg("changefeed payload unmarshal failed")
			continue
		}
		f.dispatcher.Enqueue(ev)
	}
}

// dispatch fans one event out to every subscribed channel.
func (f *ChangeFeed) dispatch(ev domain.ChangeEvent) {
	f.mu.Lock()
	channels := make([]*feedChannel, 0, len(f.channels))
	for _, ch := range f.channels {
		channels = append(channels, ch)
	}
	f.mu.Unlock()

	for _, ch := range channels {
		ch.deliver(ev)
	}
	metrics.ChangeEventsDeliveredTotal.WithLabelValues(ev.Table, string(ev.Type)).Inc()
}

func (f *ChangeFeed) OpenChannel(name string) ports.Channel {
	return &feedChannel{feed: f, name: name, status: statusUnopened}
}

// RemoveChannel detaches the channel. Removing an unknown or already-removed
// channel is a no-op.
func (f *ChangeFeed) RemoveChannel(ch ports.Channel) error {
	fc, ok := ch.(*feedChannel)
	if !ok {
		return fmt.Errorf("changefeed: foreign channel %q", ch.Name())
	}

	f.mu.Lock()
	delete(f.channels, fc.name)
	f.mu.Unlock()

	fc.close()
	return nil
}

// Close tears down the transport subscription.
func (f *ChangeFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started {
		return nil
	}
	f.started = false
	f.cancel()
	return f.pubsub.Close()
}

const (
	statusUnopened = iota
	statusSubscribing
	statusSubscribed
	statusClosed
)

type registration struct {
	spec    ports.EventSpec
	handler ports.ChangeHandler
}

// feedChannel is one logical channel: unopened → subscribing → subscribed →
// closed, with no way back from closed.
type feedChannel struct {
	feed *ChangeFeed
	name string

	mu     sync.Mutex
	status int
	regs   []registration
}

func (c *feedChannel) Name() string {
	return c.name
}

// On attaches a listener. Listeners can only be attached before Subscribe; a
// live channel's registrations are never mutated.
func (c *feedChannel) On(spec ports.EventSpec, handler ports.ChangeHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != statusUnopened {
		return
	}
	c.regs = append(c.regs, registration{spec: spec, handler: handler})
}

func (c *feedChannel) Subscribe(ctx context.Context, status func(ports.ChannelStatus)) error {
	c.mu.Lock()
	if c.status != statusUnopened {
		c.mu.Unlock()
		return fmt.Errorf("changefeed: channel %q already subscribed or closed", c.name)
	}
	c.status = statusSubscribing
	c.mu.Unlock()
	if status != nil {
		status(ports.ChannelSubscribing)
	}

	c.feed.mu.Lock()
	c.feed.channels[c.name] = c
	c.feed.mu.Unlock()

	c.mu.Lock()
	c.status = statusSubscribed
	c.mu.Unlock()
	if status != nil {
		status(ports.ChannelSubscribed)
	}
	return nil
}

func (c *feedChannel) deliver(ev domain.ChangeEvent) {
	c.mu.Lock()
	if c.status != statusSubscribed {
		c.mu.Unlock()
		return
	}
	regs := c.regs
	c.mu.Unlock()

	for _, reg := range regs {
		if reg.spec.Matches(ev) {
			reg.handler(ev)
		}
	}
}

func (c *feedChannel) close() {
	c.mu.Lock()
	c.status = statusClosed
	c.mu.Unlock()
}
