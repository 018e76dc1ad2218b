package curvecodec

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/klauspost/compress/flate"
)

// EncodeVarints writes each value as an unsigned LEB128 varint: seven bits
// per byte, low bits first, continuation bit on every byte but the last.
func EncodeVarints(values []int64) ([]byte, error) {
	size := 0
	for i, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("%w: %d at index %d", ErrNegativeVarint, v, i)
		}
		size += varintLen(uint64(v))
	}
	out := make([]byte, 0, size)
	for _, v := range values {
		out = binary.AppendUvarint(out, uint64(v))
	}
	if len(out) != size {
		panic("curvecodec: varint output size mismatch")
	}
	return out, nil
}

// DecodeVarints reads a sequence written by EncodeVarints.
func DecodeVarints(b []byte) ([]int64, error) {
	count := 0
	for _, c := range b {
		if c&0x80 == 0 {
			count++
		}
	}
	out := make([]int64, 0, count)
	for p := 0; p < len(b); {
		v, n := binary.Uvarint(b[p:])
		if n == 0 {
			return nil, fmt.Errorf("%w: truncated varint at byte %d", ErrPayload, p)
		}
		if n < 0 || v > math.MaxUint32 {
			return nil, fmt.Errorf("%w: varint overflow at byte %d", ErrPayload, p)
		}
		out = append(out, int64(v))
		p += n
	}
	if len(out) != count {
		return nil, fmt.Errorf("%w: decoded %d varints, expected %d", ErrPayload, len(out), count)
	}
	return out, nil
}

func varintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

func deflate(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(b []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(b))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrPayload, err)
	}
	return out, nil
}

func encodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: base64url: %v", ErrPayload, err)
	}
	return b, nil
}
