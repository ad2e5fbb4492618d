package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

var (
	// ErrProducerClosed is returned by Publish after Close or once the Start context ends.
	ErrProducerClosed = errors.New("producer closed")
	// ErrProducerNotStarted is returned by Publish before Start.
	ErrProducerNotStarted = errors.New("producer not started")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer buffers envelopes and writes them to Kafka from a single goroutine.
// Every Publish that returns nil is written before Close returns.
type Producer struct {
	w       messageWriter
	service string
	log     logrus.FieldLogger
	inbox   chan kafka.Message
	done    chan struct{}

	// mu is held shared by Publish for the whole enqueue and exclusively when
	// stopping, so no send can land after the final drain.
	mu       sync.RWMutex
	started  bool
	stopped  bool
	closing  chan struct{}
	stopOnce sync.Once
	shutdown sync.Once
}

func NewProducer(brokers []string, topic, service string, buf int, log logrus.FieldLogger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, service, buf, log)
}

func newProducer(w messageWriter, service string, buf int, log logrus.FieldLogger) *Producer {
	return &Producer{
		w:       w,
		service: service,
		log:     log,
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
}

// Start launches the write loop. It drains the buffer and closes the writer when
// ctx is cancelled or Close is called. Calls after the first, or after Close, do nothing.
func (p *Producer) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true
	go func() {
		defer p.finish()
		for {
			select {
			case <-ctx.Done():
				p.stop()
				p.drain()
				return
			case <-p.closing:
				p.stop()
				p.drain()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

// stop wakes blocked publishers, then waits for in-flight ones to leave.
func (p *Producer) stop() {
	p.stopOnce.Do(func() {
		close(p.closing)
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
	})
}

func (p *Producer) finish() {
	p.shutdown.Do(func() {
		if err := p.w.Close(); err != nil {
			p.log.WithError(err).Warn("kafka writer close")
		}
		close(p.done)
	})
}

func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.log.WithError(err).WithField("key", string(m.Key)).Error("kafka publish failed")
	}
}

// Publish queues env for delivery. It blocks only while the buffer is full.
func (p *Producer) Publish(ctx context.Context, env Envelope) error {
	if env.Producer == "" {
		env.Producer = p.service
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(env.CorrelationID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrProducerClosed
	}
	if !p.started {
		return ErrProducerNotStarted
	}
	select {
	case p.inbox <- msg:
		return nil
	case <-p.closing:
		return ErrProducerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits for the buffer to be flushed. A producer
// that was never started just closes its writer.
func (p *Producer) Close() {
	p.stop()
	p.mu.RLock()
	started := p.started
	p.mu.RUnlock()
	if !started {
		p.finish()
	}
	<-p.done
}
