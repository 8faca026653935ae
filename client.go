package aredis

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// pendingSlot is a one-shot completion slot in the pending completion
// table. Exactly one value is ever sent on ch.
type pendingSlot struct {
	ch chan result
}

type result struct {
	reply ReplyMessage
	err   error
}

// Client is the host-facing façade over one connection's event loop. Go
// callers may invoke Client methods from many goroutines concurrently, so
// the pending completion table here is guarded by a mutex; see DESIGN.md.
type Client struct {
	el *EventLoopState

	nextID atomic.Int64

	mu      sync.Mutex
	pending map[int64]pendingSlot
	closed  bool

	log zerolog.Logger
}

// Connect constructs a Protocol Engine context, starts the poll/reader
// goroutines, and returns a ready-to-use Client. It fails synchronously if
// the dial fails.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	addr := opts.resolveAddr()
	engine := opts.resolveEngine()
	m := NewMetrics(opts.Registerer)

	c := &Client{
		pending: make(map[int64]pendingSlot),
		log:     opts.Logger,
	}

	port := newChanPort(opts.ReplyBuffer)
	el, err := newEventLoop(ctx, engine, addr, ConnectOptions{ConnectTimeout: opts.resolveConnectTimeout()}, port, opts.Logger, m)
	if err != nil {
		return nil, err
	}
	c.el = el

	go c.listen(port)
	return c, nil
}

// listen matches envelopes arriving from the event loop to pending slots.
func (c *Client) listen(port Port) {
	for env := range port.Messages() {
		if env.IsDisconnect() {
			// Exactly one sentinel is ever posted per event-loop lifetime;
			// nothing else will arrive after it.
			c.failAll(ErrConnectionLost)
			return
		}
		slot, ok := c.takeSlot(env.CommandID)
		if !ok {
			continue // unknown/cancelled/already-completed command id
		}
		if env.Reply.IsError() {
			slot.ch <- result{err: env.Reply.Err()}
		} else {
			slot.ch <- result{reply: env.Reply}
		}
	}
}

func (c *Client) takeSlot(id int64) (pendingSlot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	return slot, ok
}

func (c *Client) failAll(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[int64]pendingSlot)
	c.mu.Unlock()
	for _, slot := range pending {
		slot.ch <- result{err: err}
	}
}

// Command allocates a fresh command id, registers a completion slot,
// enqueues the command, and blocks (via ctx) until the reply arrives or
// ctx is done.
func (c *Client) Command(ctx context.Context, argv ...[]byte) (ReplyMessage, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ReplyMessage{}, ErrClientClosed
	}
	id := c.nextID.Inc()
	slot := pendingSlot{ch: make(chan result, 1)}
	c.pending[id] = slot
	c.mu.Unlock()

	if err := c.el.submit(id, argv); err != nil {
		c.takeSlot(id) // undo registration; submit never reached the queue
		return ReplyMessage{}, err
	}

	select {
	case r := <-slot.ch:
		return r.reply, r.err
	case <-ctx.Done():
		c.takeSlot(id)
		return ReplyMessage{}, ctx.Err()
	}
}

// StringCommand is a convenience for building argv from plain strings,
// used throughout commands.go's mechanical wrappers.
func (c *Client) StringCommand(ctx context.Context, args ...string) (ReplyMessage, error) {
	argv := make([][]byte, len(args))
	for i, a := range args {
		argv[i] = []byte(a)
	}
	return c.Command(ctx, argv...)
}

// Close tears down the connection: idempotent, fails every still-pending
// future with ErrClientClosed, and causes any future created after Close to
// fail immediately with ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	// Fail pending slots before teardown posts the disconnect sentinel, so
	// listen's ErrConnectionLost path finds nothing left to fail.
	c.failAll(ErrClientClosed)
	c.el.close()
	c.el.port.Close()
	return nil
}

// Pipeline runs fn, deferring the poll-goroutine wakeup until fn returns so
// every command issued inside fn goes out as one pipelined write. This
// supplements the implicit per-drain batching with an explicit
// caller-controlled one, the same shape as grab-grab-redis/redisapi's
// Pipeliner interface.
func (c *Client) Pipeline(ctx context.Context, fn func(p *Pipeline) error) ([]ReplyMessage, error) {
	p := &Pipeline{ctx: ctx, client: c}
	if err := fn(p); err != nil {
		return nil, err
	}
	return p.await()
}

// Pipeline batches commands submitted within a single Client.Pipeline call.
type Pipeline struct {
	ctx    context.Context
	client *Client
	ids    []int64
	slots  []pendingSlot
}

// Command enqueues a command without waiting for its reply; call
// (*Client).Pipeline's await (internal) to collect results in submission
// order once the callback returns.
func (p *Pipeline) Command(argv ...[]byte) error {
	c := p.client
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	id := c.nextID.Inc()
	slot := pendingSlot{ch: make(chan result, 1)}
	c.pending[id] = slot
	c.mu.Unlock()

	node, err := newCommandNode(c.el.port, id, argv)
	if err != nil {
		c.takeSlot(id)
		return err
	}
	c.el.queue.push(node) // no wake yet: batched until await()
	p.ids = append(p.ids, id)
	p.slots = append(p.slots, slot)
	return nil
}

func (p *Pipeline) await() ([]ReplyMessage, error) {
	p.client.el.wake.wake()
	out := make([]ReplyMessage, len(p.ids))
	for i, slot := range p.slots {
		select {
		case r := <-slot.ch:
			if r.err != nil {
				return out, r.err
			}
			out[i] = r.reply
		case <-p.ctx.Done():
			return out, p.ctx.Err()
		}
	}
	return out, nil
}
