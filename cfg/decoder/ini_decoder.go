package decoder

import (
	"github.com/hatlonely/litedb/cfg/storage"
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// IniDecoder INI 解码器，section 对应一层嵌套，值保持字符串，由绑定时按字段类型解析
//
// section 名中的点号表示更深的嵌套，如 [sql.pool]
type IniDecoder struct {
	AllowShadows bool
}

func NewIniDecoder() *IniDecoder {
	return &IniDecoder{AllowShadows: true}
}

func (d *IniDecoder) Decode(data []byte) (storage.Storage, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		AllowShadows:             d.AllowShadows,
		SpaceBeforeInlineComment: true,
	}, data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode INI")
	}

	result := map[string]any{}
	for _, section := range file.Sections() {
		target := result
		if section.Name() != ini.DefaultSection {
			target = sectionMap(result, section.Name())
		}
		for _, key := range section.Keys() {
			if values := key.ValueWithShadows(); d.AllowShadows && len(values) > 1 {
				list := make([]any, len(values))
				for i, v := range values {
					list[i] = v
				}
				target[key.Name()] = list
				continue
			}
			target[key.Name()] = key.String()
		}
	}
	return storage.NewMapStorage(result), nil
}

func sectionMap(root map[string]any, name string) map[string]any {
	current := root
	start := 0
	for i := 0; i <= len(name); i++ {
		if i < len(name) && name[i] != '.' {
			continue
		}
		part := name[start:i]
		start = i + 1
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	return current
}
