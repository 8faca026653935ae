package aredis

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// EventLoopState owns one connection's queue, wakeup channel, and protocol
// context for its whole lifetime. Go has no single OS thread exclusively
// driving epoll/kqueue the way a C client's event loop would, so the work is
// split across a small two-goroutine team — the poll goroutine (drains the
// queue, submits commands, flushes writes) and a reader goroutine (blocking
// reads, parked by the Go netpoller so there is no busy polling). The write
// buffer belongs to the poll side and the read buffer to the reader; the
// pending-callback list both sides touch is guarded inside the ProtocolConn
// itself. So only the write side needs a mutex of its own here; the reader
// never takes it, since holding a lock
// shared with the writer across a blocking read would let a slow reply
// starve every future submission.
type EventLoopState struct {
	id   uuid.UUID
	conn ProtocolConn
	port Port

	queue commandQueue
	wake  wakeupChan
	stop  atomic.Bool

	writeMu sync.Mutex

	readerDone chan struct{}
	pollDone   chan struct{}

	log     zerolog.Logger
	metrics *metrics
}

// newEventLoop connects via engine and starts the poll/reader goroutines.
// It returns once the underlying dial has succeeded (or failed), so a caller
// never has to poll for connection readiness.
func newEventLoop(ctx context.Context, engine ProtocolEngine, addr string, opts ConnectOptions, port Port, log zerolog.Logger, m *metrics) (*EventLoopState, error) {
	conn, err := engine.Connect(ctx, addr, opts)
	if err != nil {
		return nil, connectionFailedError(addr, err)
	}
	if m == nil {
		m = noopMetrics()
	}
	el := &EventLoopState{
		id:         uuid.New(),
		conn:       conn,
		port:       port,
		wake:       newWakeupChan(),
		readerDone: make(chan struct{}),
		pollDone:   make(chan struct{}),
		metrics:    m,
	}
	el.log = log.With().Str("event_loop_id", el.id.String()).Str("addr", addr).Logger()
	el.log.Info().Msg("event loop connected")
	go el.readerLoop()
	go el.pollLoop()
	return el, nil
}

// submit enqueues a command node for the poll goroutine and wakes it.
// Callable from any goroutine.
func (el *EventLoopState) submit(commandID int64, argv [][]byte) error {
	if el.stop.Load() {
		return ErrClientClosed
	}
	node, err := newCommandNode(el.port, commandID, argv)
	if err != nil {
		return err
	}
	el.queue.push(node)
	el.wake.wake()
	return nil
}

// close sets the stop flag, wakes the poll goroutine, and blocks until it
// has finished tearing down. Idempotent.
func (el *EventLoopState) close() {
	if !el.stop.CompareAndSwap(false, true) {
		<-el.pollDone // already closing/closed: still wait for teardown
		return
	}
	el.wake.wake()
	<-el.pollDone
}

func (el *EventLoopState) pollLoop() {
	for {
		if el.stop.Load() {
			el.teardown()
			return
		}

		nodes := el.queue.drainAll()
		el.metrics.queueDepth.Set(float64(len(nodes)))
		for _, n := range nodes {
			info := &CallbackInfo{port: el.port, commandID: n.commandID, persistent: false}
			cb := func(reply *nativeReply, info *CallbackInfo) {
				el.metrics.inFlight.Dec()
				dispatchReply(reply, info, el.log)
			}

			el.writeMu.Lock()
			err := el.conn.Submit(n.argv, cb, info)
			el.writeMu.Unlock()

			if err != nil {
				el.metrics.submitFailures.Inc()
				el.log.Error().Err(err).Int64("command_id", n.commandID).Msg("submission failed")
				postSafely(el.port, Envelope{CommandID: n.commandID, Reply: ErrorReply(submissionFailedError(err).Error())}, el.log)
				continue
			}
			el.metrics.inFlight.Inc()
		}

		if len(nodes) > 0 {
			el.writeMu.Lock()
			werr := el.conn.OnWrite()
			el.writeMu.Unlock()
			if werr != nil {
				el.log.Error().Err(werr).Msg("write failed")
				el.teardown()
				return
			}
		}

		el.metrics.pollWakeups.Inc()
		select {
		case <-el.wake:
		case <-el.readerDone:
			el.teardown()
			return
		}
	}
}

// readerLoop calls the protocol connection's blocking read directly,
// without writeMu: OnRead touches the read buffer plus the pending-callback
// list, and the connection itself keeps that list safe for concurrent use
// alongside Submit/OnWrite, so there is nothing here for writeMu to guard.
// Taking it anyway would serialize every reply behind whatever the poll
// goroutine is doing, turning a blocking read that can legitimately take
// an arbitrary amount of time into a lock held across that same span —
// starving every future submission until a reply happens to arrive.
func (el *EventLoopState) readerLoop() {
	defer close(el.readerDone)
	for {
		err := el.conn.OnRead()
		if err != nil {
			el.log.Debug().Err(err).Msg("reader loop exiting")
			return
		}
	}
}

// teardown is the connection's destruction sequence: disconnect, join the
// reader goroutine, drain any still-queued commands (they were never
// submitted) and post each a connection-lost Error reply, free the context,
// and post the disconnect sentinel exactly once.
func (el *EventLoopState) teardown() {
	el.stop.Store(true)
	el.conn.Disconnect()
	<-el.readerDone

	for _, n := range el.queue.drainAll() {
		postSafely(el.port, Envelope{CommandID: n.commandID, Reply: ErrorReply(ErrConnectionLost.Error())}, el.log)
	}

	if err := el.conn.Free(); err != nil {
		el.log.Warn().Err(err).Msg("error freeing protocol context")
	}

	el.metrics.disconnects.Inc()
	el.log.Info().Msg("event loop torn down")
	postSafely(el.port, Envelope{CommandID: DisconnectCommandID}, el.log)
	close(el.pollDone)
}
