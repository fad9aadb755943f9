// Package json wraps goccy/go-json with pooled buffers for the
// serialization paths: sidecar metadata objects and the CLI's machine
// readable report output.
package json

import (
	"bytes"
	"sync"

	gojson "github.com/goccy/go-json"
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// MarshalIndent serializes v to indented JSON.
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// EncodeToBytes encodes v through a pooled buffer and returns a copy of
// the encoded bytes, terminated with a newline.
func EncodeToBytes(v interface{}) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	enc := gojson.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
