package scribe

// Outbound audio chunk message. The transport treats PCM as a byte
// stream; chunk boundaries carry no meaning on the service side.
type audioChunkMessage struct {
	MessageType string `json:"message_type"`
	AudioBase64 string `json:"audio_base_64"`
}

const messageTypeAudioChunk = "input_audio_chunk"

// Inbound message envelope. Depending on message_type either text or
// error is populated.
type inboundMessage struct {
	MessageType string `json:"message_type"`
	Text        string `json:"text"`
	Error       string `json:"error"`
}

type messageClass int

const (
	classUnknown messageClass = iota
	classPartial
	classCommitted
	classError
)

// classify maps the service's message type vocabulary onto the three
// event families the consumer sees.
func classify(messageType string) messageClass {
	switch messageType {
	case "partial_transcript":
		return classPartial
	case "committed_transcript",
		"committed_transcript_with_timestamps",
		"final_transcript",
		"transcript":
		return classCommitted
	case "error",
		"auth_error",
		"quota_exceeded",
		"rate_limited",
		"invalid_request":
		return classError
	default:
		return classUnknown
	}
}
