package aredis

// wakeupChan converts a "work pending" or "stop requested" event on any
// goroutine into a wake-up for the poll goroutine. It is the Go-idiomatic
// stand-in for a self-pipe: a buffered channel of capacity 1 selected on
// alongside socket readiness, with an idempotent, non-blocking send.
type wakeupChan chan struct{}

func newWakeupChan() wakeupChan {
	return make(wakeupChan, 1)
}

// wake is idempotent and non-blocking: a full channel (a wake-up already
// pending) is left alone rather than blocking the caller.
func (w wakeupChan) wake() {
	select {
	case w <- struct{}{}:
	default:
	}
}

// drain discards any pending wake-up after a select has already consumed
// (or is about to consume) one. Kept as an explicit operation even though
// receiving from the channel in a select already consumes the single
// pending token, so callers don't have to reason about which path did it.
func (w wakeupChan) drain() {
	select {
	case <-w:
	default:
	}
}
