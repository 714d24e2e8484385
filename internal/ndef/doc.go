// Package ndef encodes and decodes NFC Data Exchange Format messages.
//
// Only the parts of the NFC Forum formats the tag engine needs are covered:
// short and long record framing, the well-known URI record ("U") and the
// well-known text record ("T"). Chunked records are not supported.
//
// The package is pure: nothing here performs I/O.
//
// # Usage
//
//	msg, err := ndef.NewURIMessage("https://example.test/animal/badger")
//	if err != nil {
//	    return err // malformed identifier
//	}
//	raw, _ := msg.Marshal()
//
//	back, _ := ndef.Unmarshal(raw)
//	uri, ok := back.FirstURI()
package ndef
