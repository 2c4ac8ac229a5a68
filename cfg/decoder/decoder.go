package decoder

import (
	"path/filepath"
	"strings"

	"github.com/hatlonely/litedb/cfg/storage"
	"github.com/pkg/errors"
)

// Decoder 把原始配置文本解码为配置树
type Decoder interface {
	Decode(data []byte) (storage.Storage, error)
}

// NewDecoder 根据格式名创建解码器，支持 yaml, yml, json, toml, ini
func NewDecoder(format string) (Decoder, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		return &YamlDecoder{}, nil
	case "json":
		return NewJsonDecoder(), nil
	case "toml":
		return &TomlDecoder{}, nil
	case "ini":
		return NewIniDecoder(), nil
	}
	return nil, errors.Errorf("unsupported config format: %q", format)
}

// NewDecoderForFile 根据文件扩展名选择解码器
func NewDecoderForFile(path string) (Decoder, error) {
	return NewDecoder(filepath.Ext(path))
}
