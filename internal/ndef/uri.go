package ndef

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// URIType is the well-known type name of a URI record.
var URIType = []byte("U")

var (
	ErrMalformedURI = errors.New("ndef: malformed URI")
	ErrNotURIRecord = errors.New("ndef: not a well-known URI record")
)

// uriPrefixes is the URI identifier code table. The index is the code stored
// in the first payload byte; codes past the end of the table are reserved.
var uriPrefixes = [...]string{
	0x00: "",
	0x01: "http://www.",
	0x02: "https://www.",
	0x03: "http://",
	0x04: "https://",
	0x05: "tel:",
	0x06: "mailto:",
	0x07: "ftp://anonymous:anonymous@",
	0x08: "ftp://ftp.",
	0x09: "ftps://",
	0x0A: "sftp://",
	0x0B: "smb://",
	0x0C: "nfs://",
	0x0D: "ftp://",
	0x0E: "dav://",
	0x0F: "news:",
	0x10: "telnet://",
	0x11: "imap:",
	0x12: "rtsp://",
	0x13: "urn:",
	0x14: "pop:",
	0x15: "sip:",
	0x16: "sips:",
	0x17: "tftp:",
	0x18: "btspp://",
	0x19: "btl2cap://",
	0x1A: "btgoep://",
	0x1B: "tcpobex://",
	0x1C: "irdaobex://",
	0x1D: "file://",
	0x1E: "urn:epc:id:",
	0x1F: "urn:epc:tag:",
	0x20: "urn:epc:pat:",
	0x21: "urn:epc:raw:",
	0x22: "urn:epc:",
	0x23: "urn:nfc:",
}

// ValidateURI reports whether s can be carried in a URI record.
// The identifier must be non-empty UTF-8 without whitespace or control
// characters and must parse as a URI reference.
func ValidateURI(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty identifier", ErrMalformedURI)
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: invalid UTF-8", ErrMalformedURI)
	}
	if i := strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}); i >= 0 {
		return fmt.Errorf("%w: illegal character at offset %d", ErrMalformedURI, i)
	}
	if _, err := url.Parse(s); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedURI, err)
	}
	return nil
}

// abbreviate returns the longest matching prefix code and the remainder.
func abbreviate(s string) (byte, string) {
	code, best := 0, 0
	for i := 1; i < len(uriPrefixes); i++ {
		p := uriPrefixes[i]
		if len(p) > best && strings.HasPrefix(s, p) {
			code, best = i, len(p)
		}
	}
	return byte(code), s[best:]
}

// NewURIRecord encodes identifier as a well-known URI record.
func NewURIRecord(identifier string) (Record, error) {
	if err := ValidateURI(identifier); err != nil {
		return Record{}, err
	}
	code, rest := abbreviate(identifier)
	payload := make([]byte, 0, 1+len(rest))
	payload = append(payload, code)
	payload = append(payload, rest...)
	return Record{TNF: TNFWellKnown, Type: URIType, Payload: payload}, nil
}

// NewURIMessage returns a single-record message carrying identifier.
func NewURIMessage(identifier string) (*Message, error) {
	rec, err := NewURIRecord(identifier)
	if err != nil {
		return nil, err
	}
	return NewMessage(rec), nil
}

// IsURI reports whether the record header names a well-known URI record.
func (r Record) IsURI() bool {
	return r.TNF == TNFWellKnown && bytes.Equal(r.Type, URIType)
}

// URI decodes the identifier carried by a well-known URI record.
func (r Record) URI() (string, error) {
	if !r.IsURI() {
		return "", ErrNotURIRecord
	}
	if len(r.Payload) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrMalformedURI)
	}
	code := int(r.Payload[0])
	if code >= len(uriPrefixes) {
		return "", fmt.Errorf("%w: reserved prefix code 0x%02x", ErrMalformedURI, code)
	}
	rest := r.Payload[1:]
	if !utf8.Valid(rest) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrMalformedURI)
	}
	return uriPrefixes[code] + string(rest), nil
}

// FirstURI returns the first record that decodes as a URI.
// Records of other shapes, and URI records that fail to decode, are skipped.
func (m *Message) FirstURI() (string, bool) {
	if m == nil {
		return "", false
	}
	for _, r := range m.Records {
		if uri, err := r.URI(); err == nil {
			return uri, true
		}
	}
	return "", false
}
