package nfcsim

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/taghunt/internal/ndef"
	"github.com/roach88/taghunt/internal/nfc"
)

// DefaultCapacity is the NDEF capacity of a scripted tag that does not set
// one. It matches the user area of a common 144-byte tag.
const DefaultCapacity = 137

// Script describes a simulated field and the event order of its sessions.
type Script struct {
	// Available reports whether the device can read tags. Default true.
	Available *bool `yaml:"available,omitempty"`

	// Timeout bounds session inactivity once the steps are exhausted.
	// Zero delivers the timeout as soon as the steps run out.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	Steps []Step             `yaml:"steps"`
	Tags  map[string]TagSpec `yaml:"tags,omitempty"`
}

// Step is one scripted platform event. Exactly one of DetectTags,
// DetectMessages or Invalidate is set.
type Step struct {
	// DetectTags names the tags presented together.
	DetectTags []string `yaml:"detect_tags,omitempty"`

	// DetectMessages names tags whose stored messages the platform reads
	// and delivers directly.
	DetectMessages []string `yaml:"detect_messages,omitempty"`

	// Invalidate ends the session with the given reader error code.
	Invalidate nfc.ErrorCode `yaml:"invalidate,omitempty"`

	// Delay is waited before the step is delivered.
	Delay time.Duration `yaml:"delay,omitempty"`
}

// TagSpec describes one tag in the field.
type TagSpec struct {
	Message  []RecordSpec `yaml:"message,omitempty"`
	Status   string       `yaml:"status,omitempty"`
	Capacity int          `yaml:"capacity,omitempty"`

	ConnectError nfc.ErrorCode `yaml:"connect_error,omitempty"`
	StatusError  nfc.ErrorCode `yaml:"status_error,omitempty"`
	ReadError    nfc.ErrorCode `yaml:"read_error,omitempty"`
	WriteError   nfc.ErrorCode `yaml:"write_error,omitempty"`
}

// RecordSpec describes one NDEF record. Exactly one of URI, Text or MIME is set.
type RecordSpec struct {
	URI     string `yaml:"uri,omitempty"`
	Text    string `yaml:"text,omitempty"`
	Lang    string `yaml:"lang,omitempty"`
	MIME    string `yaml:"mime,omitempty"`
	Payload string `yaml:"payload,omitempty"`
}

// ParseScript decodes a YAML script. Unknown fields are rejected.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScript reads and parses a YAML script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	s, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadingAvailable reports the Available setting.
func (s *Script) ReadingAvailable() bool {
	return s.Available == nil || *s.Available
}

// Validate checks that steps reference known tags and that every error code
// and status is recognized.
func (s *Script) Validate() error {
	var errs []error
	if s.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	for i, st := range s.Steps {
		set := 0
		if len(st.DetectTags) > 0 {
			set++
		}
		if len(st.DetectMessages) > 0 {
			set++
		}
		if st.Invalidate != "" {
			set++
			if !knownCode(st.Invalidate) {
				errs = append(errs, fmt.Errorf("step %d: unknown error code %q", i, st.Invalidate))
			}
		}
		if set != 1 {
			errs = append(errs, fmt.Errorf("step %d: exactly one of detect_tags, detect_messages, invalidate is required", i))
		}
		for _, name := range append(append([]string(nil), st.DetectTags...), st.DetectMessages...) {
			if _, ok := s.Tags[name]; !ok {
				errs = append(errs, fmt.Errorf("step %d: unknown tag %q", i, name))
			}
		}
	}
	for name, tag := range s.Tags {
		if _, err := parseStatus(tag.Status); err != nil {
			errs = append(errs, fmt.Errorf("tag %q: %w", name, err))
		}
		for _, code := range []nfc.ErrorCode{tag.ConnectError, tag.StatusError, tag.ReadError, tag.WriteError} {
			if code != "" && !knownCode(code) {
				errs = append(errs, fmt.Errorf("tag %q: unknown error code %q", name, code))
			}
		}
		if _, err := buildMessage(tag.Message); err != nil {
			errs = append(errs, fmt.Errorf("tag %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

var codes = map[nfc.ErrorCode]bool{
	nfc.CodeUserCanceled:            true,
	nfc.CodeSessionTimeout:          true,
	nfc.CodeFirstTagRead:            true,
	nfc.CodeSystemBusy:              true,
	nfc.CodeSessionInvalidated:      true,
	nfc.CodeUnexpectedlyInvalidated: true,
	nfc.CodeTagConnectionLost:       true,
	nfc.CodeTagNotWritable:          true,
	nfc.CodeTagUpdateFailure:        true,
	nfc.CodeUnknown:                 true,
}

func knownCode(c nfc.ErrorCode) bool { return codes[c] }

func parseStatus(s string) (nfc.TagStatus, error) {
	switch s {
	case "", "read_write":
		return nfc.StatusReadWrite, nil
	case "read_only":
		return nfc.StatusReadOnly, nil
	case "not_supported":
		return nfc.StatusNotSupported, nil
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

// buildMessage returns nil for an empty record list: the tag holds no message.
func buildMessage(specs []RecordSpec) (*ndef.Message, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	records := make([]ndef.Record, 0, len(specs))
	for i, rs := range specs {
		var (
			rec ndef.Record
			err error
		)
		switch {
		case rs.URI != "" && rs.Text == "" && rs.MIME == "":
			rec, err = ndef.NewURIRecord(rs.URI)
		case rs.Text != "" && rs.URI == "" && rs.MIME == "":
			lang := rs.Lang
			if lang == "" {
				lang = "en"
			}
			rec, err = ndef.NewTextRecord(lang, rs.Text)
		case rs.MIME != "" && rs.URI == "" && rs.Text == "":
			rec = ndef.Record{TNF: ndef.TNFMedia, Type: []byte(rs.MIME), Payload: []byte(rs.Payload)}
		default:
			err = errors.New("exactly one of uri, text, mime is required")
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return ndef.NewMessage(records...), nil
}
