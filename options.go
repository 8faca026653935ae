package aredis

import (
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Environment variables consulted when Addr is left empty, matching
// go-resp3's client package (client/client.go's hostPort helper).
const (
	EnvHost = "REDIS_HOST"
	EnvPort = "REDIS_PORT"
)

// DefaultPort is used when EnvPort is unset and no explicit Addr is given.
const DefaultPort = "6379"

// DefaultHost is used when EnvHost is unset and no explicit Addr is given.
const DefaultHost = "127.0.0.1"

// Options configures Connect. The zero value is usable: it dials
// DefaultHost:DefaultPort (or REDIS_HOST/REDIS_PORT, if set) with a
// one-second connect timeout, no logging, and no metrics.
type Options struct {
	// Addr is "host:port" or an absolute Unix socket path. Empty means
	// "consult REDIS_HOST/REDIS_PORT, defaulting to 127.0.0.1:6379".
	Addr string

	// ConnectTimeout bounds TCP/Unix dial time. Zero defaults to one
	// second, matching xenking-redis/twokaybee-redis.
	ConnectTimeout time.Duration

	// ReplyBuffer sizes the Port's channel buffer. Zero defaults to 64.
	ReplyBuffer int

	// Engine overrides the Protocol Engine; nil uses DefaultProtocolEngine.
	// Tests supply a mock here, exercising the same seam production code
	// uses to dial a real connection.
	Engine ProtocolEngine

	// Logger receives structured connect/disconnect/error events. The zero
	// value (zerolog.Logger{}) behaves like zerolog.Nop().
	Logger zerolog.Logger

	// Registerer, if non-nil, receives the client's Prometheus
	// instruments. Pass prometheus.NewRegistry() per-client to avoid name
	// collisions across multiple Clients in one process.
	Registerer prometheus.Registerer
}

func (o Options) resolveAddr() string {
	if o.Addr != "" {
		return normalizeAddr(o.Addr)
	}
	host := os.Getenv(EnvHost)
	if host == "" {
		host = DefaultHost
	}
	port := os.Getenv(EnvPort)
	if port == "" {
		port = DefaultPort
	}
	return normalizeAddr(net.JoinHostPort(host, port))
}

func (o Options) resolveEngine() ProtocolEngine {
	if o.Engine != nil {
		return o.Engine
	}
	return DefaultProtocolEngine
}

func (o Options) resolveConnectTimeout() time.Duration {
	if o.ConnectTimeout > 0 {
		return o.ConnectTimeout
	}
	return time.Second
}

// normalizeAddr fills in a default host/port, or cleans a Unix socket
// path, exactly as xenking-redis's normalizeAddr does.
func normalizeAddr(s string) string {
	if isUnixAddr(s) {
		return filepath.Clean(s)
	}
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		host = s
	}
	if host == "" {
		host = DefaultHost
	}
	if port == "" {
		port = DefaultPort
	}
	return net.JoinHostPort(host, port)
}
