package aredis

import (
	"context"
	"io"
	"sync"
)

// mockEngine and mockConn implement ProtocolEngine/ProtocolConn entirely
// in-memory, exercising the same explicit engine seam production code
// dials a real connection through. Submit only records argv; OnWrite is
// the point at which a reply becomes available to OnRead, so tests can
// count OnWrite calls to observe pipelining batch boundaries.
// A handler's bool return reports whether the server answers at all: false
// simulates a command that was written to the wire but never gets a reply
// before the connection is torn down (the in-flight-at-Close scenario).
type mockHandler func(argv [][]byte, store *kvStore) (*nativeReply, bool)

type mockEngine struct {
	mu      sync.Mutex
	conns   []*mockConn
	handler mockHandler
}

func (e *mockEngine) Connect(ctx context.Context, addr string, opts ConnectOptions) (ProtocolConn, error) {
	h := e.handler
	if h == nil {
		h = echoHandler
	}
	c := &mockConn{
		ready:   make(chan readyReply, 1<<16),
		closed:  make(chan struct{}),
		handler: h,
		store:   &kvStore{data: make(map[string][]byte)},

		connected: true,
	}
	e.mu.Lock()
	e.conns = append(e.conns, c)
	e.mu.Unlock()
	return c, nil
}

type kvStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

type pendingSubmission struct {
	argv [][]byte
	cb   ReplyCallback
	info *CallbackInfo
}

type readyReply struct {
	reply *nativeReply
	cb    ReplyCallback
	info  *CallbackInfo
}

type mockConn struct {
	mu      sync.Mutex
	outbox  []pendingSubmission
	ready   chan readyReply
	pushCB  pendingCallback
	hasPush bool
	handler mockHandler
	store   *kvStore

	writeMu    sync.Mutex
	writeCalls int

	closeOnce sync.Once
	closed    chan struct{}
	connected bool
}

func (c *mockConn) Submit(argv [][]byte, cb ReplyCallback, info *CallbackInfo) error {
	if len(argv) == 0 {
		return ErrEmptyArgv
	}
	c.mu.Lock()
	c.outbox = append(c.outbox, pendingSubmission{argv: argv, cb: cb, info: info})
	c.mu.Unlock()
	return nil
}

func (c *mockConn) OnWrite() error {
	c.mu.Lock()
	pending := c.outbox
	c.outbox = nil
	c.mu.Unlock()

	c.writeMu.Lock()
	c.writeCalls++
	c.writeMu.Unlock()

	for _, p := range pending {
		reply, ok := c.handler(p.argv, c.store)
		if !ok {
			continue // simulated unanswered request
		}
		select {
		case c.ready <- readyReply{reply: reply, cb: p.cb, info: p.info}:
		case <-c.closed:
			return nil
		}
	}
	return nil
}

func (c *mockConn) OnRead() error {
	select {
	case rr := <-c.ready:
		if rr.cb != nil {
			rr.cb(rr.reply, rr.info)
		}
		return nil
	case <-c.closed:
		return io.EOF
	}
}

func (c *mockConn) SetPushCallback(cb ReplyCallback, info *CallbackInfo) {
	c.mu.Lock()
	c.pushCB = pendingCallback{cb: cb, info: info}
	c.hasPush = true
	c.mu.Unlock()
}

// push injects an out-of-band push reply, as a real Redis server would when
// delivering a pub/sub message on a subscription connection.
func (c *mockConn) push(reply *nativeReply) {
	c.mu.Lock()
	cb, info, ok := c.pushCB.cb, c.pushCB.info, c.hasPush
	c.mu.Unlock()
	if !ok {
		return
	}
	select {
	case c.ready <- readyReply{reply: reply, cb: cb, info: info}:
	case <-c.closed:
	}
}

func (c *mockConn) Connected() bool { return c.connected }

func (c *mockConn) Disconnect() {
	c.closeOnce.Do(func() {
		c.connected = false
		close(c.closed)
	})
}

func (c *mockConn) Free() error { return nil }

func (e *mockEngine) firstConn() *mockConn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conns[0]
}

func (c *mockConn) writeCallCount() int {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeCalls
}

// echoHandler implements just enough of PING/SET/GET/ECHO/SUBSCRIBE/
// PSUBSCRIBE for the client and subscription tests; anything else returns
// Status("OK"). It always answers.
func echoHandler(argv [][]byte, store *kvStore) (*nativeReply, bool) {
	if len(argv) == 0 {
		return &nativeReply{kind: KindError, str: "ERR empty command"}, true
	}
	switch string(argv[0]) {
	case "PING":
		return &nativeReply{kind: KindStatus, str: "PONG"}, true
	case "ECHO":
		if len(argv) != 2 {
			return &nativeReply{kind: KindError, str: "ERR wrong number of arguments"}, true
		}
		return &nativeReply{kind: KindString, bytes: argv[1]}, true
	case "SET":
		if len(argv) != 3 {
			return &nativeReply{kind: KindError, str: "ERR wrong number of arguments"}, true
		}
		store.mu.Lock()
		store.data[string(argv[1])] = append([]byte(nil), argv[2]...)
		store.mu.Unlock()
		return &nativeReply{kind: KindStatus, str: "OK"}, true
	case "GET":
		if len(argv) != 2 {
			return &nativeReply{kind: KindError, str: "ERR wrong number of arguments"}, true
		}
		store.mu.Lock()
		v, ok := store.data[string(argv[1])]
		store.mu.Unlock()
		if !ok {
			return nil, true
		}
		return &nativeReply{kind: KindString, bytes: v}, true
	case "SUBSCRIBE":
		if len(argv) != 2 {
			return &nativeReply{kind: KindError, str: "ERR wrong number of arguments"}, true
		}
		return &nativeReply{kind: KindArray, elements: []*nativeReply{
			strNative("subscribe"), strNative(string(argv[1])), intNative(1),
		}}, true
	case "PSUBSCRIBE":
		if len(argv) != 2 {
			return &nativeReply{kind: KindError, str: "ERR wrong number of arguments"}, true
		}
		return &nativeReply{kind: KindArray, elements: []*nativeReply{
			strNative("psubscribe"), strNative(string(argv[1])), intNative(1),
		}}, true
	default:
		return &nativeReply{kind: KindStatus, str: "OK"}, true
	}
}
