package notify

// Sink delivers payloads to chat destinations. Delivery is best-effort: a
// false return means "not sent", and callers continue either way. Failures
// are logged by implementations and never propagate.
type Sink interface {
	Send(destination int64, payload string) bool
	SendDocument(destination int64, caption, filename string, content []byte) bool
}
