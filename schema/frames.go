package schema

// Stream frame types emitted by the streaming chat flow. Frames are encoded
// as newline-delimited JSON objects.
const (
	FrameSources = "sources"
	FrameToken   = "token"
	FrameError   = "error"
)

// StreamFrame is one newline-delimited JSON frame of the streaming response.
// When sources exist, a sources frame is emitted first; token frames follow
// until the stream closes or a single terminal error frame is sent.
type StreamFrame struct {
	Type    string      `json:"type"`
	Sources []SourceRef `json:"sources,omitempty"`
	Token   string      `json:"token,omitempty"`
	Message string      `json:"message,omitempty"`
}

// NewSourcesFrame creates the sources-first framing message.
func NewSourcesFrame(sources []SourceRef) *StreamFrame {
	return &StreamFrame{Type: FrameSources, Sources: sources}
}

// NewTokenFrame creates a frame carrying one decoded text fragment.
func NewTokenFrame(token string) *StreamFrame {
	return &StreamFrame{Type: FrameToken, Token: token}
}

// NewErrorFrame creates the terminal in-band error frame.
func NewErrorFrame(message string) *StreamFrame {
	return &StreamFrame{Type: FrameError, Message: message}
}
