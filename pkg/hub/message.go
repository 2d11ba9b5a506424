// Package hub fans scanner output out to websocket subscribers using a
// single goroutine that owns the client set.
package hub

// MessageType indicates the websocket frame type a message is sent as.
type MessageType int

const (
	// TextMessage is UTF-8 text, normally JSON.
	TextMessage MessageType = iota
	// BinaryMessage is raw bytes such as a JPEG frame.
	BinaryMessage
)

func (t MessageType) String() string {
	if t == BinaryMessage {
		return "binary"
	}
	return "text"
}

// Message is one broadcast unit.
type Message struct {
	Type MessageType
	Data []byte
}

// NewTextMessage wraps pre-encoded text.
func NewTextMessage(data []byte) Message {
	return Message{Type: TextMessage, Data: data}
}

// NewBinaryMessage wraps binary data.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
