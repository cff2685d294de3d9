// Package protocol implements the wire format shared by the superchat
// server and client: a fixed-width decimal length header followed by the
// message body, with a small control-tag sublanguage carried in the first
// bytes of the body.
package protocol

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// HeaderLength is the size of the length header in bytes. The header
	// holds the body length as space-padded ASCII decimal digits.
	HeaderLength = 4

	// MaxBodyLength is the largest body a frame may carry. A header that
	// declares more than this is a protocol violation.
	MaxBodyLength = 512
)

// Errors returned by the framing layer.
var (
	// ErrMalformedHeader is returned when a header cannot be parsed as a
	// decimal length or declares a length over MaxBodyLength.
	ErrMalformedHeader = errors.New("protocol: malformed header")
	// ErrBodyTooLarge is returned when encoding a body over MaxBodyLength.
	ErrBodyTooLarge = errors.New("protocol: body exceeds maximum length")
)

// EncodeFrame returns the wire bytes for body: the header followed by the
// body itself.
func EncodeFrame(body []byte) ([]byte, error) {
	if len(body) > MaxBodyLength {
		return nil, ErrBodyTooLarge
	}
	frame := make([]byte, 0, HeaderLength+len(body))
	frame = append(frame, fmt.Sprintf("%*d", HeaderLength, len(body))...)
	frame = append(frame, body...)
	return frame, nil
}

// DecodeHeader parses a length header. It accepts the space padding
// produced by EncodeFrame and rejects anything that is not a decimal
// number in [0, MaxBodyLength].
func DecodeHeader(header []byte) (int, error) {
	if len(header) != HeaderLength {
		return 0, ErrMalformedHeader
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(header)))
	if err != nil || n < 0 || n > MaxBodyLength {
		return 0, ErrMalformedHeader
	}
	return n, nil
}

// ReadFrame reads exactly one frame from r and returns its body. Reading
// from an io.Reader lets the caller hand in a buffered stream; the frame
// boundary is controlled here, so TCP fragmentation never splits a
// message.
func ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, HeaderLength)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	n, err := DecodeHeader(header)
	if err != nil {
		return nil, err
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// WriteFrame encodes body and writes the whole frame to w in one call.
func WriteFrame(w io.Writer, body []byte) error {
	frame, err := EncodeFrame(body)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// ParseFrame decodes a frame held fully in memory, as delivered by
// message-oriented transports. The declared length must match the bytes
// present exactly.
func ParseFrame(frame []byte) ([]byte, error) {
	if len(frame) < HeaderLength {
		return nil, ErrMalformedHeader
	}
	n, err := DecodeHeader(frame[:HeaderLength])
	if err != nil {
		return nil, err
	}
	if len(frame) != HeaderLength+n {
		return nil, ErrMalformedHeader
	}
	return frame[HeaderLength:], nil
}
