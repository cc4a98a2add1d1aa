package parsers

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// SkipBOM はUTF-8 BOMをスキップします。
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	bom := []byte{0xEF, 0xBB, 0xBF}
	peeked, err := br.Peek(3)
	if err != nil {
		return br
	}
	isBOM := true
	for i, b := range bom {
		if peeked[i] != b {
			isBOM = false
			break
		}
	}
	if isBOM {
		br.Discard(3)
	}
	return br
}

// lookupEncoding は設定の文字コード名からデコーダを返します。UTF-8 の場合は nil です。
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "shift_jis", "shift-jis", "sjis":
		return japanese.ShiftJIS, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unsupported CSV encoding: %s", name)
	}
}

// SupportedEncoding は文字コード名が使用可能かどうかを返します。
func SupportedEncoding(name string) bool {
	_, err := lookupEncoding(name)
	return err == nil
}

// decodeReader は指定の文字コードでUTF-8に変換するリーダーを返します。
func decodeReader(r io.Reader, encodingName string) (io.Reader, error) {
	enc, err := lookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return SkipBOM(r), nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// normalizeHeader はヘッダー行の前後の空白を除去します。
func normalizeHeader(header []string) []string {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}
	return cols
}
