package ndef

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// TNF is the 3-bit Type Name Format field of a record header.
type TNF uint8

const (
	TNFEmpty       TNF = 0x00
	TNFWellKnown   TNF = 0x01
	TNFMedia       TNF = 0x02
	TNFAbsoluteURI TNF = 0x03
	TNFExternal    TNF = 0x04
	TNFUnknown     TNF = 0x05
	TNFUnchanged   TNF = 0x06
)

// Record header flags.
const (
	flagMB  = 0x80 // message begin
	flagME  = 0x40 // message end
	flagCF  = 0x20 // chunk
	flagSR  = 0x10 // short record (1-byte payload length)
	flagIL  = 0x08 // id length present
	tnfMask = 0x07
)

var (
	ErrEmptyMessage  = errors.New("ndef: message has no records")
	ErrShortRecord   = errors.New("ndef: short record")
	ErrChunkedRecord = errors.New("ndef: chunked records are not supported")
	ErrMissingEnd    = errors.New("ndef: message end flag not found")
	ErrTrailingData  = errors.New("ndef: trailing data after message end")
	ErrMessageBegin  = errors.New("ndef: message begin flag misplaced")
)

// Record is one NDEF record.
type Record struct {
	TNF     TNF
	Type    []byte
	ID      []byte
	Payload []byte
}

// Message is an ordered list of records.
type Message struct {
	Records []Record
}

// NewMessage builds a message from records in order.
func NewMessage(records ...Record) *Message {
	return &Message{Records: records}
}

// short reports whether the record fits the short-record form.
func (r Record) short() bool {
	return len(r.Payload) <= math.MaxUint8
}

// encodedLen is the number of bytes the record occupies on the wire.
func (r Record) encodedLen() int {
	n := 2 // header + type length
	if r.short() {
		n++
	} else {
		n += 4
	}
	if len(r.ID) > 0 {
		n++
	}
	return n + len(r.Type) + len(r.ID) + len(r.Payload)
}

// Len returns the encoded length of the message in bytes.
// This is the figure compared against a tag's reported capacity.
func (m *Message) Len() int {
	n := 0
	for _, r := range m.Records {
		n += r.encodedLen()
	}
	return n
}

// Marshal encodes the message using short records where the payload allows.
func (m *Message) Marshal() ([]byte, error) {
	if m == nil || len(m.Records) == 0 {
		return nil, ErrEmptyMessage
	}

	out := make([]byte, 0, m.Len())
	last := len(m.Records) - 1
	for i, r := range m.Records {
		if len(r.Type) > math.MaxUint8 {
			return nil, fmt.Errorf("ndef: record %d: type length %d exceeds 255", i, len(r.Type))
		}
		if len(r.ID) > math.MaxUint8 {
			return nil, fmt.Errorf("ndef: record %d: id length %d exceeds 255", i, len(r.ID))
		}
		if uint64(len(r.Payload)) > math.MaxUint32 {
			return nil, fmt.Errorf("ndef: record %d: payload too large", i)
		}

		header := byte(r.TNF) & tnfMask
		if i == 0 {
			header |= flagMB
		}
		if i == last {
			header |= flagME
		}
		if r.short() {
			header |= flagSR
		}
		if len(r.ID) > 0 {
			header |= flagIL
		}

		out = append(out, header, byte(len(r.Type)))
		if r.short() {
			out = append(out, byte(len(r.Payload)))
		} else {
			out = binary.BigEndian.AppendUint32(out, uint32(len(r.Payload)))
		}
		if len(r.ID) > 0 {
			out = append(out, byte(len(r.ID)))
		}
		out = append(out, r.Type...)
		out = append(out, r.ID...)
		out = append(out, r.Payload...)
	}
	return out, nil
}

// Unmarshal decodes a complete message. Decoding stops at the record carrying
// the message-end flag; any bytes after it are an error.
func Unmarshal(data []byte) (*Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}

	msg := &Message{}
	i := 0
	for i < len(data) {
		if len(data)-i < 3 {
			return nil, ErrShortRecord
		}
		header := data[i]
		if (header&flagMB != 0) != (len(msg.Records) == 0) {
			return nil, ErrMessageBegin
		}
		if header&flagCF != 0 {
			return nil, ErrChunkedRecord
		}
		typeLen := int(data[i+1])
		i += 2

		var payloadLen uint64
		if header&flagSR != 0 {
			payloadLen = uint64(data[i])
			i++
		} else {
			if len(data)-i < 4 {
				return nil, ErrShortRecord
			}
			payloadLen = uint64(binary.BigEndian.Uint32(data[i : i+4]))
			i += 4
		}

		idLen := 0
		if header&flagIL != 0 {
			if len(data)-i < 1 {
				return nil, ErrShortRecord
			}
			idLen = int(data[i])
			i++
		}

		// Compared in uint64 so a 4-byte length cannot wrap int.
		if uint64(len(data)-i) < uint64(typeLen+idLen)+payloadLen {
			return nil, ErrShortRecord
		}
		n := int(payloadLen)

		rec := Record{TNF: TNF(header & tnfMask)}
		rec.Type = append([]byte(nil), data[i:i+typeLen]...)
		i += typeLen
		if idLen > 0 {
			rec.ID = append([]byte(nil), data[i:i+idLen]...)
			i += idLen
		}
		rec.Payload = append([]byte(nil), data[i:i+n]...)
		i += n

		msg.Records = append(msg.Records, rec)

		if header&flagME != 0 {
			if i != len(data) {
				return nil, ErrTrailingData
			}
			return msg, nil
		}
	}
	return nil, ErrMissingEnd
}

// Summary describes each record on one line for logs, e.g.
// ["uri https://example.test", "text/en hello", "media image/png 42B"].
func (m *Message) Summary() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.Records))
	for i, r := range m.Records {
		if uri, err := r.URI(); err == nil {
			out[i] = "uri " + uri
			continue
		}
		if lang, text, err := r.Text(); err == nil {
			out[i] = "text/" + lang + " " + text
			continue
		}
		switch r.TNF {
		case TNFMedia:
			out[i] = fmt.Sprintf("media %s %dB", r.Type, len(r.Payload))
		default:
			out[i] = fmt.Sprintf("tnf %d %q %dB", r.TNF, r.Type, len(r.Payload))
		}
	}
	return out
}
