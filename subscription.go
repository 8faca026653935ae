package aredis

import (
	"context"
	"sync"
)

// MessageType identifies which of the six pub/sub notification shapes a
// Message carries.
type MessageType string

const (
	TypeMessage      MessageType = "message"
	TypePMessage     MessageType = "pmessage"
	TypeSubscribe    MessageType = "subscribe"
	TypeUnsubscribe  MessageType = "unsubscribe"
	TypePSubscribe   MessageType = "psubscribe"
	TypePUnsubscribe MessageType = "punsubscribe"
)

// Message is the user-facing pub/sub notification. Channel is decoded
// eagerly, since it's read on almost every message; Message and Pattern
// are decoded lazily on first access via sync.Once, since many consumers
// only care about one or the other.
type Message struct {
	Type    MessageType
	Channel string

	msgOnce  sync.Once
	msgBytes []byte
	msgStr   string

	patOnce  sync.Once
	patBytes []byte
	patStr   string

	// Count carries the subscription-count payload on
	// subscribe/unsubscribe/psubscribe/punsubscribe acks.
	Count int64
}

// MessagePayload returns the message body (type message/pmessage).
func (m *Message) MessagePayload() []byte {
	m.msgOnce.Do(func() { m.msgStr = string(m.msgBytes) })
	return m.msgBytes
}

// MessageText lazily decodes the message body to a string.
func (m *Message) MessageText() string {
	m.msgOnce.Do(func() { m.msgStr = string(m.msgBytes) })
	return m.msgStr
}

// Pattern lazily decodes the originating pattern (type pmessage only).
func (m *Message) Pattern() string {
	m.patOnce.Do(func() { m.patStr = string(m.patBytes) })
	return m.patStr
}

// Subscription is the dedicated-connection handle for pub/sub: a fresh
// connect, SUBSCRIBE/PSUBSCRIBE sent with a persistent callback, and
// decoded messages delivered over a channel. A Redis connection in
// subscribe mode accepts only subscription-management commands, so
// publishing requires a separate Client — the API makes that split
// explicit rather than hiding it behind one type.
type Subscription struct {
	el  *EventLoopState
	msg chan Message

	mu     sync.Mutex
	closed bool
}

// Subscribe opens a dedicated connection and subscribes to channels and/or
// patterns. At least one of channels/patterns must be non-empty.
func Subscribe(ctx context.Context, opts Options, channels, patterns []string) (*Subscription, error) {
	if len(channels) == 0 && len(patterns) == 0 {
		return nil, ErrEmptySubscription
	}

	addr := opts.resolveAddr()
	engine := opts.resolveEngine()
	m := NewMetrics(opts.Registerer)
	port := newChanPort(opts.ReplyBuffer)

	el, err := newEventLoop(ctx, engine, addr, ConnectOptions{ConnectTimeout: opts.resolveConnectTimeout()}, port, opts.Logger, m)
	if err != nil {
		return nil, err
	}

	s := &Subscription{
		el:  el,
		msg: make(chan Message, 64),
	}

	el.conn.SetPushCallback(func(reply *nativeReply, info *CallbackInfo) {
		s.emit(serializeDFS(reply))
	}, &CallbackInfo{persistent: true})

	// Drain the port ourselves instead of going through Client.listen:
	// subscription replies are decoded into Messages, not surfaced as
	// ordinary command completions.
	go s.drainPort(port)

	var id atomicIDSource
	if len(channels) > 0 {
		argv := stringArgv(append([]string{"SUBSCRIBE"}, channels...))
		if err := el.submit(id.next(), argv); err != nil {
			el.close()
			return nil, err
		}
	}
	if len(patterns) > 0 {
		argv := stringArgv(append([]string{"PSUBSCRIBE"}, patterns...))
		if err := el.submit(id.next(), argv); err != nil {
			el.close()
			return nil, err
		}
	}

	return s, nil
}

// drainPort closes the message channel on the disconnect sentinel and
// decodes the SUBSCRIBE/PSUBSCRIBE acks that arrive as ordinary command
// replies. Published messages bypass the port: they are routed through the
// push callback directly, per el's SetPushCallback registration above, not
// through Client.listen's normal command-id matching.
func (s *Subscription) drainPort(port Port) {
	for env := range port.Messages() {
		if env.IsDisconnect() {
			close(s.msg)
			return
		}
		// Ordinary SUBSCRIBE/PSUBSCRIBE acks also arrive via the normal
		// Submit-registered callback path (not the push handler) because
		// they are direct replies to a submitted command; decode them the
		// same way.
		s.emit(env.Reply)
	}
}

func (s *Subscription) emit(msg ReplyMessage) {
	if msg.Kind != KindArray && msg.Kind != KindPush {
		return
	}
	elems := msg.Array
	if len(elems) == 0 || elems[0].Kind != KindString {
		return
	}
	typ := MessageType(elems[0].Bytes)
	out := Message{Type: typ}

	switch typ {
	case TypeMessage:
		if len(elems) != 3 {
			return
		}
		out.Channel = string(elems[1].Bytes)
		out.msgBytes = elems[2].Bytes
	case TypePMessage:
		if len(elems) != 4 {
			return
		}
		out.patBytes = elems[1].Bytes
		out.Channel = string(elems[2].Bytes)
		out.msgBytes = elems[3].Bytes
	case TypeSubscribe, TypeUnsubscribe, TypePSubscribe, TypePUnsubscribe:
		if len(elems) != 3 {
			return
		}
		out.Channel = string(elems[1].Bytes)
		out.Count = elems[2].Int
	default:
		return
	}

	select {
	case s.msg <- out:
	default:
		// Slow consumer: drop rather than block the push callback.
	}
}

// Messages exposes the lazy sequence of decoded pub/sub notifications. The
// channel closes once the subscription is torn down (Close, or the
// underlying connection is lost).
func (s *Subscription) Messages() <-chan Message {
	return s.msg
}

// Close tears down the dedicated event loop.
func (s *Subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.el.close()
	s.el.port.Close()
	return nil
}

// atomicIDSource is a tiny, non-shared command-id counter local to one
// Subscribe call — subscription acks don't need to interoperate with a
// Client's pending completion table.
type atomicIDSource struct{ n int64 }

func (a *atomicIDSource) next() int64 {
	a.n++
	return a.n
}

func stringArgv(args []string) [][]byte {
	out := make([][]byte, len(args))
	for i, a := range args {
		out[i] = []byte(a)
	}
	return out
}
