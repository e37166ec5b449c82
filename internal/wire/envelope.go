package wire

import "fmt"

// Encode builds a full datagram: the fixed header followed by the encoded
// payload body (or no body at all for pure ACK-only packets).
func Encode(h Header, payload Payload) []byte {
	var body []byte
	if payload != nil {
		h.MessageType = payload.Type()
		body = EncodePayload(payload)
	}
	out := make([]byte, 0, HeaderSize+len(body))
	out = append(out, EncodeHeader(h)...)
	out = append(out, body...)
	return out
}

// Decode parses a full datagram into its header and, if present, its
// payload. It enforces §4.1's fail modes: short datagrams and protocol
// version mismatches are reported as errors so the caller can discard
// silently with a trace log, never propagating further. The payload body
// carries no tag of its own: it is always decoded as the header's message
// type, so the final tag comparison cannot fail, and a body written for a
// different type is rejected only when it does not parse as the header's
// type.
func Decode(data []byte) (Header, Payload, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return Header{}, nil, err
	}
	if h.ProtocolVersion != CurrentProtocolVersion {
		return h, nil, fmt.Errorf("wire: protocol version mismatch: got 0x%08x, want 0x%08x", h.ProtocolVersion, CurrentProtocolVersion)
	}
	body := data[HeaderSize:]
	if h.HasFlag(FlagAckOnly) {
		if len(body) != 0 {
			return h, nil, fmt.Errorf("wire: ack-only packet carries a non-empty payload")
		}
		return h, nil, nil
	}
	if len(body) == 0 {
		return h, nil, nil
	}
	payload, err := DecodePayload(h.MessageType, body)
	if err != nil {
		return h, nil, err
	}
	if payload.Type() != h.MessageType {
		return h, nil, fmt.Errorf("wire: header message-type %d does not match payload tag %d", h.MessageType, payload.Type())
	}
	return h, payload, nil
}
