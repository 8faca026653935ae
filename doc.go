// Package aredis provides asynchronous access to a Redis node. See
// <https://redis.io/topics/introduction> for the concept and
// <https://redis.io/topics/pipelining> for the pipelining this package
// automates.
//
// Connect starts a dedicated pair of goroutines — a poll goroutine and a
// reader goroutine — that together own a single Protocol Engine
// connection for the life of the Client. Commands issued from any
// goroutine are queued lock-free, batched into pipelined writes, and their
// replies delivered back through a one-shot completion per command. A
// Client is safe for concurrent use by multiple goroutines.
//
// Subscribe opens a second, dedicated connection per subscription, since a
// Redis connection in subscribe mode accepts only subscription-management
// commands; publishing and ordinary commands go through a separate Client.
package aredis
