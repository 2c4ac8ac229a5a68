// Package cfg 从配置文件加载选项结构体
//
// 加载顺序：先按 def 标签填充默认值，再用配置文件中出现的键覆盖，最后按 validate 标签校验。
// 字段名由 cfg 标签决定，没有标签时按字段名忽略大小写匹配
package cfg

import (
	"os"

	"github.com/hatlonely/litedb/cfg/decoder"
	"github.com/hatlonely/litedb/cfg/storage"
	"github.com/hatlonely/litedb/cfg/validator"
	"github.com/pkg/errors"
)

type loadOptions struct {
	key string
}

type LoadOption func(*loadOptions)

// WithKey 只加载配置中 key 指向的部分，如 "database.primary"
func WithKey(key string) LoadOption {
	return func(o *loadOptions) {
		o.key = key
	}
}

// Load 读取文件并绑定到 object，格式由扩展名决定
func Load(path string, object any, opts ...LoadOption) error {
	dec, err := decoder.NewDecoderForFile(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	return decode(dec, data, object, opts)
}

// LoadBytes 按 format（yaml, json, toml, ini）解析 data 并绑定到 object
func LoadBytes(data []byte, format string, object any, opts ...LoadOption) error {
	dec, err := decoder.NewDecoder(format)
	if err != nil {
		return err
	}
	return decode(dec, data, object, opts)
}

func decode(dec decoder.Decoder, data []byte, object any, opts []LoadOption) error {
	options := &loadOptions{}
	for _, opt := range opts {
		opt(options)
	}

	s, err := dec.Decode(data)
	if err != nil {
		return err
	}
	if options.key != "" {
		s = s.Sub(options.key)
	}

	if err := storage.SetDefaults(object); err != nil {
		return errors.WithMessage(err, "set defaults failed")
	}
	if err := s.ConvertTo(object); err != nil {
		return errors.WithMessage(err, "convert config failed")
	}
	if err := validator.ValidateStruct(object); err != nil {
		return errors.Wrap(err, "validate config failed")
	}
	return nil
}
