package aredis

import "fmt"

// ReplyKind identifies the shape a ReplyMessage carries. It mirrors the
// RESP2/RESP3 reply types a Protocol Engine can hand back.
type ReplyKind uint8

const (
	KindNil ReplyKind = iota
	KindStatus
	KindError
	KindInteger
	KindDouble
	KindBool
	KindBigNum
	KindVerbatimString
	KindString
	KindArray
	KindMap
	KindSet
	KindPush
)

func (k ReplyKind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindStatus:
		return "status"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindBigNum:
		return "bignum"
	case KindVerbatimString:
		return "verbatim"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	case KindPush:
		return "push"
	default:
		return "unknown"
	}
}

// ReplyMessage is a value-typed tree mirroring a Redis reply. Once
// constructed it owns all of its storage: freeing whatever native reply it
// was serialized from never invalidates it.
type ReplyMessage struct {
	Kind    ReplyKind
	Str     string         // Status, Error, Double, BigNum, VerbatimString
	Int     int64          // Integer
	Bool    bool           // Bool
	Bytes   []byte         // String (binary-safe)
	Array   []ReplyMessage // Array, Set, Push
	Map     []ReplyMessage // Map, flattened key/value pairs, even length
}

// Nil is the shared zero-value Nil reply.
var Nil = ReplyMessage{Kind: KindNil}

func StatusReply(s string) ReplyMessage { return ReplyMessage{Kind: KindStatus, Str: s} }
func ErrorReply(s string) ReplyMessage  { return ReplyMessage{Kind: KindError, Str: s} }
func IntegerReply(v int64) ReplyMessage { return ReplyMessage{Kind: KindInteger, Int: v} }
func BoolReply(v bool) ReplyMessage     { return ReplyMessage{Kind: KindBool, Bool: v} }
func StringReply(b []byte) ReplyMessage {
	cp := make([]byte, len(b))
	copy(cp, b)
	return ReplyMessage{Kind: KindString, Bytes: cp}
}
func ArrayReply(elems []ReplyMessage) ReplyMessage { return ReplyMessage{Kind: KindArray, Array: elems} }

// IsError reports whether the reply is the RESP error variant.
func (r ReplyMessage) IsError() bool { return r.Kind == KindError }

// Err turns an Error-kind reply into a Go error, or nil otherwise.
func (r ReplyMessage) Err() error {
	if r.Kind != KindError {
		return nil
	}
	return ReplyError{Message: r.Str}
}

// String renders a human-readable form, mainly for logging/debugging.
func (r ReplyMessage) String() string {
	switch r.Kind {
	case KindNil:
		return "(nil)"
	case KindStatus:
		return r.Str
	case KindError:
		return "(error) " + r.Str
	case KindInteger:
		return fmt.Sprintf("(integer) %d", r.Int)
	case KindDouble, KindBigNum, KindVerbatimString:
		return r.Str
	case KindBool:
		return fmt.Sprintf("%v", r.Bool)
	case KindString:
		return string(r.Bytes)
	case KindArray, KindSet, KindPush:
		return fmt.Sprintf("%s(%d items)", r.Kind, len(r.Array))
	case KindMap:
		return fmt.Sprintf("map(%d pairs)", len(r.Map)/2)
	default:
		return "(unknown)"
	}
}

// serializeDFS performs a depth-first, fully-owned copy of a native reply
// into a ReplyMessage tree. It is only ever called from the reader
// goroutine, inside a reply or push callback run by OnRead, so no reference
// to the native reply escapes that goroutine.
func serializeDFS(n *nativeReply) ReplyMessage {
	if n == nil {
		return Nil
	}
	switch n.kind {
	case KindArray, KindMap, KindSet, KindPush:
		elems := make([]ReplyMessage, len(n.elements))
		for i, e := range n.elements {
			elems[i] = serializeDFS(e)
		}
		switch n.kind {
		case KindMap:
			return ReplyMessage{Kind: KindMap, Map: elems}
		default:
			return ReplyMessage{Kind: n.kind, Array: elems}
		}
	case KindString:
		return StringReply(n.bytes)
	case KindBool:
		return BoolReply(n.boolean)
	case KindInteger:
		return IntegerReply(n.integer)
	default: // status, error, double, bignum, verbatim — all string-backed
		return ReplyMessage{Kind: n.kind, Str: n.str}
	}
}
