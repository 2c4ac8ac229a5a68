package decoder

import (
	"github.com/BurntSushi/toml"
	"github.com/hatlonely/litedb/cfg/storage"
	"github.com/pkg/errors"
)

type TomlDecoder struct{}

func (t *TomlDecoder) Decode(data []byte) (storage.Storage, error) {
	var result map[string]any
	if err := toml.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode TOML")
	}
	return storage.NewMapStorage(result), nil
}
