package subtitles

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText converts subtitle bytes to UTF-8. External Chinese subtitles are
// frequently GBK or Big5; UTF-16 files carry a BOM. Valid UTF-8 passes
// through untouched.
func DecodeText(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:]), nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", fmt.Errorf("decode utf-16: %w", err)
		}
		return string(decoded), nil
	case utf8.Valid(data):
		return string(data), nil
	}

	for _, enc := range []transform.Transformer{
		simplifiedchinese.GBK.NewDecoder(),
		traditionalchinese.Big5.NewDecoder(),
	} {
		decoded, _, err := transform.Bytes(enc, data)
		if err == nil && utf8.Valid(decoded) {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("unrecognized text encoding")
}
