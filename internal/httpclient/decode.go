package httpclient

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// DecodeBody converts a raw response body to UTF-8 text. The encoding is taken
// from contentType, then a BOM or <meta> tag, falling back to UTF-8.
// A body that claims UTF-8 but is not valid UTF-8 is rejected, unless it was
// truncated, in which case the broken tail is dropped.
func DecodeBody(body []byte, contentType string, truncated bool) (string, error) {
	enc, name, _ := charset.DetermineEncoding(body, contentType)

	if name == "utf-8" {
		body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
		if utf8.Valid(body) {
			return string(body), nil
		}
		if truncated {
			return string(bytes.ToValidUTF8(body, nil)), nil
		}
		return "", fmt.Errorf("body is not valid %s", name)
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decode %s body: %w", name, err)
	}
	return string(decoded), nil
}
