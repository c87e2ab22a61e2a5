package encoding_test

import (
	"testing"

	"github.com/stackvity/json-mirror/pkg/converter/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// encodeBytes encodes text with the given transformer.
func encodeBytes(t *testing.T, text string, enc transform.Transformer) []byte {
	t.Helper()
	encoded, _, err := transform.Bytes(enc, []byte(text))
	require.NoError(t, err)
	return encoded
}

func TestNewDecoder_Names(t *testing.T) {
	for _, name := range []string{"", "utf-8", "UTF-8", "utf8", "auto", " Auto ", "windows-1252", "latin1", "utf-16le", "shift_jis"} {
		t.Run(name, func(t *testing.T) {
			dec, err := encoding.NewDecoder(name)
			require.NoError(t, err)
			assert.NotNil(t, dec)
		})
	}

	t.Run("Unknown label", func(t *testing.T) {
		dec, err := encoding.NewDecoder("klingon-8")
		require.Error(t, err)
		assert.ErrorIs(t, err, encoding.ErrUnknownEncoding)
		assert.Nil(t, dec)
	})
}

func TestStrictUTF8(t *testing.T) {
	dec, err := encoding.NewDecoder("")
	require.NoError(t, err)

	t.Run("Valid text is unchanged", func(t *testing.T) {
		input := "line one\r\nline two é 日本 🚀\n"
		text, name, err := dec.Decode([]byte(input))
		require.NoError(t, err)
		assert.Equal(t, "utf-8", name)
		assert.Equal(t, input, text)
	})

	t.Run("Empty content", func(t *testing.T) {
		text, _, err := dec.Decode(nil)
		require.NoError(t, err)
		assert.Equal(t, "", text)
	})

	t.Run("Invalid utf-8 text", func(t *testing.T) {
		latin1 := encodeBytes(t, "café", charmap.Windows1252.NewEncoder())
		_, _, err := dec.Decode(latin1)
		require.Error(t, err)
		assert.ErrorIs(t, err, encoding.ErrInvalidUTF8)
		assert.Contains(t, err.Error(), "offset 3")
	})

	t.Run("Binary content", func(t *testing.T) {
		png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0xFF}
		_, _, err := dec.Decode(png)
		require.Error(t, err)
		assert.ErrorIs(t, err, encoding.ErrBinaryContent)
	})
}

func TestAutoDecoder(t *testing.T) {
	dec, err := encoding.NewDecoder("auto")
	require.NoError(t, err)

	t.Run("Plain utf-8", func(t *testing.T) {
		text, name, err := dec.Decode([]byte("hello ☃"))
		require.NoError(t, err)
		assert.Equal(t, "utf-8", name)
		assert.Equal(t, "hello ☃", text)
	})

	t.Run("UTF-16LE with BOM", func(t *testing.T) {
		original := "Hello, UTF-16LE!"
		input := append([]byte{0xFF, 0xFE}, encodeBytes(t, original, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder())...)
		text, name, err := dec.Decode(input)
		require.NoError(t, err)
		assert.Equal(t, "utf-16le", name)
		assert.Equal(t, original, text)
	})

	t.Run("Falls back to windows-1252", func(t *testing.T) {
		input := encodeBytes(t, "naïve café", charmap.Windows1252.NewEncoder())
		text, name, err := dec.Decode(input)
		require.NoError(t, err)
		assert.Equal(t, "windows-1252", name)
		assert.Equal(t, "naïve café", text)
	})

	t.Run("Binary content is rejected", func(t *testing.T) {
		_, _, err := dec.Decode([]byte{0x00, 0x01, 0x02, 0xFF})
		assert.ErrorIs(t, err, encoding.ErrBinaryContent)
	})
}

func TestLabelDecoder(t *testing.T) {
	t.Run("windows-1252", func(t *testing.T) {
		dec, err := encoding.NewDecoder("Windows-1252")
		require.NoError(t, err)
		text, name, err := dec.Decode(encodeBytes(t, "Grüße", charmap.Windows1252.NewEncoder()))
		require.NoError(t, err)
		assert.Equal(t, "windows-1252", name)
		assert.Equal(t, "Grüße", text)
	})

	t.Run("BOM overrides label", func(t *testing.T) {
		dec, err := encoding.NewDecoder("windows-1252")
		require.NoError(t, err)
		input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("日本")...)
		text, _, err := dec.Decode(input)
		require.NoError(t, err)
		assert.Equal(t, "日本", text)
	})
}
