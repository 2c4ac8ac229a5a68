package decoder

import (
	"bytes"
	"encoding/json"

	"github.com/hatlonely/litedb/cfg/storage"
	"github.com/pkg/errors"
)

// JsonDecoder JSON 解码器，AllowComments 时支持 // 和 /* */ 注释
type JsonDecoder struct {
	AllowComments bool
}

func NewJsonDecoder() *JsonDecoder {
	return &JsonDecoder{AllowComments: true}
}

func (j *JsonDecoder) Decode(data []byte) (storage.Storage, error) {
	if j.AllowComments {
		data = stripComments(data)
	}
	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode JSON")
	}
	return storage.NewMapStorage(result), nil
}

// stripComments 移除字符串字面量之外的注释
func stripComments(data []byte) []byte {
	var buf bytes.Buffer
	inString, escaped := false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			buf.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			buf.WriteByte(c)
			continue
		}
		if c == '/' && i+1 < len(data) {
			switch data[i+1] {
			case '/':
				for i < len(data) && data[i] != '\n' {
					i++
				}
				if i < len(data) {
					buf.WriteByte('\n')
				}
				continue
			case '*':
				end := bytes.Index(data[i+2:], []byte("*/"))
				if end < 0 {
					return buf.Bytes()
				}
				i += end + 3
				continue
			}
		}
		buf.WriteByte(c)
	}
	return buf.Bytes()
}
