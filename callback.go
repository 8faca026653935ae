package aredis

import "github.com/rs/zerolog"

// CallbackInfo is the small owned record associated with each submitted
// command. Ephemeral info is destroyed by the reply callback after it
// posts one message (ordinary commands); persistent info survives across
// many messages and is only destroyed when the event loop tears down
// (SUBSCRIBE/PSUBSCRIBE).
type CallbackInfo struct {
	port       Port
	commandID  int64
	persistent bool
}

// dispatchReply matches a reply to its callback and posts it across to the
// listener goroutine. It runs on the reader goroutine (invoked synchronously
// from the protocol engine's OnRead), so no raw native-reply pointer ever
// escapes the reader goroutine — it is fully serialized into a ReplyMessage
// before crossing to the Port. A nil reply is posted as Nil rather than
// leaking or panicking.
func dispatchReply(reply *nativeReply, info *CallbackInfo, log zerolog.Logger) {
	if info == nil {
		log.Warn().Msg("reply callback invoked with nil callback info, dropping reply")
		return
	}

	if reply == nil {
		postSafely(info.port, Envelope{CommandID: info.commandID, Reply: Nil}, log)
		return
	}

	msg := serializeDFS(reply)
	postSafely(info.port, Envelope{CommandID: info.commandID, Reply: msg}, log)
}

func postSafely(port Port, env Envelope, log zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered posting reply to closed port")
		}
	}()
	port.Post(env)
}
