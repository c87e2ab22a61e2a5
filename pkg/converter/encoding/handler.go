// Package encoding turns raw file bytes into text.
//
// Three decoding strategies are available through NewDecoder: strict UTF-8 (the
// default), charset sniffing ("auto"), and any IANA/WHATWG charset label such as
// "windows-1252" or "utf-16le".
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-enry/go-enry/v2"
	"golang.org/x/net/html/charset"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Names accepted by NewDecoder in addition to charset labels.
const (
	NameUTF8 = "utf-8"
	NameAuto = "auto"
)

var (
	// ErrInvalidUTF8 is returned by the strict decoder for text that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("content is not valid utf-8")
	// ErrBinaryContent is returned when the content looks like binary data rather than text.
	ErrBinaryContent = errors.New("content appears to be binary")
	// ErrUnknownEncoding is returned by NewDecoder for an unrecognised charset label.
	ErrUnknownEncoding = errors.New("unknown encoding")
	// ErrTranscode wraps failures of the underlying charset transformer.
	ErrTranscode = errors.New("failed to transcode content")
)

// Decoder converts file content to a UTF-8 string. Implementations are safe for
// concurrent use.
type Decoder interface {
	// Decode returns the decoded text and the canonical name of the encoding used.
	Decode(content []byte) (text string, encodingName string, err error)
}

// NewDecoder returns the Decoder registered for name. Lookup is case-insensitive;
// an empty name selects strict UTF-8.
func NewDecoder(name string) (Decoder, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	switch label {
	case "", NameUTF8, "utf8":
		return strictUTF8Decoder{}, nil
	case NameAuto:
		return autoDecoder{}, nil
	}

	enc, canonical := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return labelDecoder{enc: enc, name: canonical}, nil
}

// --- strict utf-8 ---

type strictUTF8Decoder struct{}

// Decode implements Decoder. The content is returned unchanged when valid.
func (strictUTF8Decoder) Decode(content []byte) (string, string, error) {
	if utf8.Valid(content) {
		return string(content), NameUTF8, nil
	}
	if enry.IsBinary(content) {
		return "", NameUTF8, ErrBinaryContent
	}
	return "", NameUTF8, fmt.Errorf("%w: invalid byte at offset %d", ErrInvalidUTF8, invalidOffset(content))
}

// invalidOffset reports the byte offset of the first invalid UTF-8 sequence.
func invalidOffset(content []byte) int {
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRune(content[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(content)
}

// --- sniffing ---

type autoDecoder struct{}

// Decode implements Decoder. A BOM wins, then valid UTF-8, then the
// windows-1252 fallback used by charset.DetermineEncoding.
func (autoDecoder) Decode(content []byte) (string, string, error) {
	if enry.IsBinary(content) && !hasUTF16BOM(content) {
		return "", NameAuto, ErrBinaryContent
	}
	enc, name, _ := charset.DetermineEncoding(content, "text/plain")
	if name == "" {
		name = NameUTF8
	}
	text, err := transcode(enc, content)
	if err != nil {
		return "", name, err
	}
	return text, name, nil
}

func hasUTF16BOM(content []byte) bool {
	return bytes.HasPrefix(content, []byte{0xFE, 0xFF}) || bytes.HasPrefix(content, []byte{0xFF, 0xFE})
}

// --- explicit label ---

type labelDecoder struct {
	enc  xencoding.Encoding
	name string
}

// Decode implements Decoder. A leading BOM overrides the configured charset.
func (d labelDecoder) Decode(content []byte) (string, string, error) {
	text, err := transcode(d.enc, content)
	if err != nil {
		return "", d.name, err
	}
	return text, d.name, nil
}

// transcode decodes content with enc, letting a BOM take precedence.
func transcode(enc xencoding.Encoding, content []byte) (string, error) {
	if enc == nil {
		enc = unicode.UTF8
	}
	r := transform.NewReader(bytes.NewReader(content), unicode.BOMOverride(enc.NewDecoder()))
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscode, err)
	}
	return string(out), nil
}
