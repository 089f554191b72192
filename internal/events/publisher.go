// Package events publishes favourite toggles to RabbitMQ as persistent JSON
// messages on a durable queue.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m3rciful/kinobot/core/logger"
	"github.com/m3rciful/kinobot/internal/favourites"
)

// DefaultQueue receives favourite toggles when no queue is configured.
const DefaultQueue = "kinobot.favourites"

const (
	defaultBuffer  = 256
	defaultBackoff = 30 * time.Second
	dialTimeout    = 5 * time.Second
	publishTimeout = 5 * time.Second
)

var (
	// ErrBufferFull is returned when toggles arrive faster than the broker takes them.
	ErrBufferFull = errors.New("events: buffer full")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("events: publisher closed")

	errBackoff = errors.New("events: broker unavailable, backing off")
)

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type connection interface {
	Close() error
}

// dialFunc opens a connection and a channel on it.
type dialFunc func(url string) (connection, channel, error)

func dialAMQP(url string) (connection, channel, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("events: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("events: open channel: %w", err)
	}
	return conn, ch, nil
}

// Publisher implements favourites.Publisher. PublishToggled only enqueues;
// one worker owns the channel, redials a closed one and waits out a backoff
// after a failed dial, dropping events meanwhile.
type Publisher struct {
	url     string
	queue   string
	dial    dialFunc
	now     func() time.Time
	backoff time.Duration
	log     *slog.Logger

	events    chan favourites.Toggled
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// owned by the worker once started
	conn    connection
	ch      channel
	retryAt time.Time
}

// Dial connects to url, declares queue and starts the publishing worker.
func Dial(url, queue string) (*Publisher, error) {
	p, err := newPublisher(url, queue, dialAMQP, defaultBuffer)
	if err != nil {
		return nil, err
	}
	p.start()
	return p, nil
}

func newPublisher(url, queue string, dial dialFunc, buffer int) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	p := &Publisher{
		url:     url,
		queue:   queue,
		dial:    dial,
		now:     time.Now,
		backoff: defaultBackoff,
		log:     logger.Component("events"),
		events:  make(chan favourites.Toggled, buffer),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	p.log.Info("publisher connected", slog.String("event", "connect"), slog.String("queue", queue))
	return p, nil
}

func (p *Publisher) start() {
	go p.run()
}

func (p *Publisher) connect() error {
	conn, ch, err := p.dial(p.url)
	if err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("events: declare queue %s: %w", p.queue, err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

// PublishToggled queues ev without waiting for the broker.
func (p *Publisher) PublishToggled(_ context.Context, ev favourites.Toggled) error {
	select {
	case <-p.stop:
		return ErrClosed
	default:
	}
	select {
	case p.events <- ev:
		return nil
	default:
		return ErrBufferFull
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for {
		select {
		case ev := <-p.events:
			p.deliver(ev)
		case <-p.stop:
			for {
				select {
				case ev := <-p.events:
					p.deliver(ev)
				default:
					p.closeConn()
					return
				}
			}
		}
	}
}

func (p *Publisher) deliver(ev favourites.Toggled) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.publish(ctx, ev); err != nil {
		p.log.Warn("publish failed",
			slog.String("event", "publish"),
			slog.String("film", ev.FilmUUID),
			slog.String("result", string(ev.Result)),
			slog.String("err", err.Error()),
		)
	}
}

func (p *Publisher) publish(ctx context.Context, ev favourites.Toggled) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Type:         "favourite." + string(ev.Result),
		Body:         body,
	}

	if err := p.ensureChannel(); err != nil {
		return err
	}
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
	if errors.Is(err, amqp.ErrClosed) {
		p.log.Warn("channel closed, redialling", slog.String("event", "redial"))
		p.closeConn()
		if err := p.ensureChannel(); err != nil {
			return err
		}
		err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
	}
	if err != nil {
		return fmt.Errorf("events: publish: %w", err)
	}
	return nil
}

func (p *Publisher) ensureChannel() error {
	if p.ch != nil {
		return nil
	}
	if p.now().Before(p.retryAt) {
		return errBackoff
	}
	if err := p.connect(); err != nil {
		p.retryAt = p.now().Add(p.backoff)
		return err
	}
	return nil
}

// Close stops accepting events, delivers what is queued and releases the
// channel and connection.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() { close(p.stop) })
	<-p.done
	return nil
}

func (p *Publisher) closeConn() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}
