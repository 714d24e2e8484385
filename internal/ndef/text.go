package ndef

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// TextType is the well-known type name of a text record.
var TextType = []byte("T")

var ErrNotTextRecord = errors.New("ndef: not a well-known text record")

const (
	textUTF16   = 0x80
	textLangLen = 0x3F
)

// NewTextRecord encodes text as a UTF-8 well-known text record.
// lang is an IANA language code such as "en".
func NewTextRecord(lang, text string) (Record, error) {
	if lang == "" || len(lang) > textLangLen {
		return Record{}, fmt.Errorf("ndef: language code length %d out of range", len(lang))
	}
	if !utf8.ValidString(text) {
		return Record{}, errors.New("ndef: text is not valid UTF-8")
	}
	payload := make([]byte, 0, 1+len(lang)+len(text))
	payload = append(payload, byte(len(lang)))
	payload = append(payload, lang...)
	payload = append(payload, text...)
	return Record{TNF: TNFWellKnown, Type: TextType, Payload: payload}, nil
}

// Text decodes a well-known text record. UTF-16 payloads are converted to UTF-8.
func (r Record) Text() (lang, text string, err error) {
	if r.TNF != TNFWellKnown || !bytes.Equal(r.Type, TextType) {
		return "", "", ErrNotTextRecord
	}
	if len(r.Payload) == 0 {
		return "", "", fmt.Errorf("%w: empty payload", ErrNotTextRecord)
	}
	status := r.Payload[0]
	n := int(status & textLangLen)
	if len(r.Payload) < 1+n {
		return "", "", ErrShortRecord
	}
	lang = string(r.Payload[1 : 1+n])
	body := r.Payload[1+n:]

	if status&textUTF16 == 0 {
		return lang, string(body), nil
	}
	decoded, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(body)
	if err != nil {
		return "", "", fmt.Errorf("ndef: decode UTF-16 text: %w", err)
	}
	return lang, string(decoded), nil
}
