package converter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	billyutil "github.com/go-git/go-billy/v5/util"

	"github.com/stackvity/json-mirror/pkg/converter/encoding"
)

// FileConverter reads one file as text and writes it as a JSON string literal to
// <output dir>/<file name>.json. It holds no per-file state and is safe for
// concurrent use.
type FileConverter struct {
	fs          billy.Filesystem
	decoder     encoding.Decoder
	ensureASCII bool
	logger      *slog.Logger
}

// NewFileConverter creates a FileConverter. A nil decoder selects strict UTF-8.
func NewFileConverter(fsys billy.Filesystem, decoder encoding.Decoder, ensureASCII bool, loggerHandler slog.Handler) *FileConverter {
	if decoder == nil {
		decoder, _ = encoding.NewDecoder(encoding.NameUTF8)
	}
	return &FileConverter{
		fs:          fsys,
		decoder:     decoder,
		ensureASCII: ensureASCII,
		logger:      slog.New(loggerHandler).With(slog.String("component", "converter")),
	}
}

// newFileConverterFromOptions builds the default Converter for validated options.
func newFileConverterFromOptions(opts *Options) (*FileConverter, error) {
	dec, err := encoding.NewDecoder(opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return NewFileConverter(opts.Filesystem, dec, opts.EnsureASCII, opts.Logger), nil
}

// OutputPath returns where the JSON copy of path is written under mode.
func OutputPath(path string, mode OutputMode) (string, error) {
	dir, err := mode.Dir(path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(path)+OutputFileSuffix), nil
}

// Convert implements Converter. Any existing output file is overwritten.
// Every returned error wraps ErrConversion and one of the specific failure
// sentinels (ErrMkdirFailed, ErrReadFailed, ErrDecodeFailed, ErrEncodeFailed,
// ErrWriteFailed).
func (c *FileConverter) Convert(path string, mode OutputMode) (FileInfo, error) {
	start := time.Now()

	outPath, err := OutputPath(path, mode)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %w: resolve output for %q: %w", ErrConversion, ErrMkdirFailed, path, err)
	}
	outDir := filepath.Dir(outPath)
	if err := c.fs.MkdirAll(outDir, outputDirMode); err != nil {
		return FileInfo{}, fmt.Errorf("%w: %w: %q: %w", ErrConversion, ErrMkdirFailed, outDir, err)
	}

	content, err := billyutil.ReadFile(c.fs, path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %w: %q: %w", ErrConversion, ErrReadFailed, path, err)
	}

	text, encName, err := c.decoder.Decode(content)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %w: %q: %w", ErrConversion, ErrDecodeFailed, path, err)
	}

	data, err := EncodeJSONString(text, c.ensureASCII)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %w: %q: %w", ErrConversion, ErrEncodeFailed, path, err)
	}

	if err := billyutil.WriteFile(c.fs, outPath, data, outputFileMode); err != nil {
		return FileInfo{}, fmt.Errorf("%w: %w: %q: %w", ErrConversion, ErrWriteFailed, outPath, err)
	}

	elapsed := time.Since(start)
	c.logger.Debug("File converted",
		slog.String("path", path),
		slog.String("output", outPath),
		slog.String("encoding", encName),
		slog.Duration("duration", elapsed),
	)

	return FileInfo{
		Path:       path,
		OutputPath: outPath,
		SizeBytes:  int64(len(content)),
		MediaType:  mimetype.Detect(content).String(),
		Encoding:   encName,
		DurationMs: elapsed.Milliseconds(),
	}, nil
}

// EncodeJSONString serializes text as a single JSON string literal without a
// trailing newline. HTML characters are left unescaped. With ensureASCII, every
// character outside printable ASCII is written as a lower-case \uXXXX escape,
// using surrogate pairs above U+FFFF. U+2028 and U+2029 are escaped in both
// modes.
func EncodeJSONString(text string, ensureASCII bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", JSONIndent)
	if err := enc.Encode(text); err != nil {
		return nil, err
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if !ensureASCII {
		return out, nil
	}
	return escapeNonASCII(out), nil
}

const hexDigits = "0123456789abcdef"

// escapeNonASCII rewrites every DEL byte and multi-byte rune in an encoded JSON
// string as \uXXXX escapes.
func escapeNonASCII(src []byte) []byte {
	dst := make([]byte, 0, len(src))
	for i := 0; i < len(src); {
		b := src[i]
		if b < 0x7f {
			dst = append(dst, b)
			i++
			continue
		}
		r, size := utf8.DecodeRune(src[i:])
		i += size
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			dst = appendUnicodeEscape(dst, hi)
			dst = appendUnicodeEscape(dst, lo)
			continue
		}
		dst = appendUnicodeEscape(dst, r)
	}
	return dst
}

func appendUnicodeEscape(dst []byte, r rune) []byte {
	return append(dst, '\\', 'u',
		hexDigits[(r>>12)&0xF],
		hexDigits[(r>>8)&0xF],
		hexDigits[(r>>4)&0xF],
		hexDigits[r&0xF],
	)
}
