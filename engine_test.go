package aredis

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func parse(t *testing.T, wire string) *nativeReply {
	t.Helper()
	r, err := parseReply(bufio.NewReader(strings.NewReader(wire)))
	if err != nil {
		t.Fatalf("parseReply(%q) error: %v", wire, err)
	}
	return r
}

func TestParseReplyStatus(t *testing.T) {
	r := parse(t, "+OK\r\n")
	if r.kind != KindStatus || r.str != "OK" {
		t.Fatalf("got %+v", r)
	}
}

func TestParseReplyError(t *testing.T) {
	r := parse(t, "-ERR wrong number of arguments\r\n")
	if r.kind != KindError || r.str != "ERR wrong number of arguments" {
		t.Fatalf("got %+v", r)
	}
}

func TestParseReplyInteger(t *testing.T) {
	r := parse(t, ":-7\r\n")
	if r.kind != KindInteger || r.integer != -7 {
		t.Fatalf("got %+v", r)
	}
}

func TestParseReplyNullBulkString(t *testing.T) {
	r := parse(t, "$-1\r\n")
	if r != nil {
		t.Fatalf("got %+v, want nil native reply for RESP2 null bulk string", r)
	}
}

func TestParseReplyNullArray(t *testing.T) {
	r := parse(t, "*-1\r\n")
	if r != nil {
		t.Fatalf("got %+v, want nil native reply for RESP2 null array", r)
	}
}

func TestParseReplyResp3Null(t *testing.T) {
	r := parse(t, "_\r\n")
	if r != nil {
		t.Fatalf("got %+v, want nil native reply for RESP3 null", r)
	}
}

func TestParseReplyBinarySafeBulkString(t *testing.T) {
	payload := []byte{0x00, '\r', '\n', 0xff}
	wire := "$4\r\n" + string(payload) + "\r\n"
	r := parse(t, wire)
	if r.kind != KindString || !bytes.Equal(r.bytes, payload) {
		t.Fatalf("got %+v, want binary-safe payload %v", r, payload)
	}
}

func TestParseReplyEmptyArray(t *testing.T) {
	r := parse(t, "*0\r\n")
	if r.kind != KindArray || len(r.elements) != 0 {
		t.Fatalf("got %+v, want empty non-nil array", r)
	}
}

func TestParseReplyNestedArray(t *testing.T) {
	wire := "*2\r\n:1\r\n*2\r\n+a\r\n+b\r\n"
	r := parse(t, wire)
	if r.kind != KindArray || len(r.elements) != 2 {
		t.Fatalf("got %+v", r)
	}
	inner := r.elements[1]
	if inner.kind != KindArray || len(inner.elements) != 2 {
		t.Fatalf("inner element malformed: %+v", inner)
	}
}

func TestParseReplyResp3Types(t *testing.T) {
	cases := []struct {
		wire string
		kind ReplyKind
	}{
		{",3.14\r\n", KindDouble},
		{"(3492890328409238509324850943850943825024385\r\n", KindBigNum},
		{"#t\r\n", KindBool},
		{"=15\r\ntxt:Some string\r\n", KindVerbatimString},
		{"~2\r\n+a\r\n+b\r\n", KindSet},
		{">2\r\n+message\r\n+hi\r\n", KindPush},
		{"%1\r\n+k\r\n+v\r\n", KindMap},
	}
	for _, c := range cases {
		r := parse(t, c.wire)
		if r.kind != c.kind {
			t.Fatalf("wire %q: got kind %v, want %v", c.wire, r.kind, c.kind)
		}
	}
}

func TestParseReplyProtocolViolation(t *testing.T) {
	_, err := parseReply(bufio.NewReader(strings.NewReader("?garbage\r\n")))
	if err != errProtocolViolation {
		t.Fatalf("got %v, want errProtocolViolation", err)
	}
}

func TestParseReplyMissingCRBeforeLF(t *testing.T) {
	_, err := parseReply(bufio.NewReader(strings.NewReader("+OK\n")))
	if err != errProtocolViolation {
		t.Fatalf("got %v, want errProtocolViolation", err)
	}
}

func TestWriteMultiBulkRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	argv := [][]byte{[]byte("SET"), []byte("k"), {0x00, 0xff, '\r', '\n'}}
	if err := writeMultiBulk(w, argv); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := bufio.NewReader(&buf)
	reply, err := parseReply(r)
	if err != nil {
		t.Fatalf("re-parsing the written wire form as an aggregate failed: %v", err)
	}
	if reply.kind != KindArray || len(reply.elements) != 3 {
		t.Fatalf("got %+v", reply)
	}
	if !bytes.Equal(reply.elements[2].bytes, argv[2]) {
		t.Fatalf("got %v, want %v", reply.elements[2].bytes, argv[2])
	}
}

func TestIsUnixAddr(t *testing.T) {
	if !isUnixAddr("/tmp/redis.sock") {
		t.Fatal("want true for absolute path")
	}
	if isUnixAddr("127.0.0.1:6379") {
		t.Fatal("want false for host:port")
	}
}
