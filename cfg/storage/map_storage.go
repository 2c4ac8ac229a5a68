package storage

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// MapStorage 基于 map 和 slice 的配置树，各解码器的输出都是它
type MapStorage struct {
	data any
}

func NewMapStorage(data any) *MapStorage {
	return &MapStorage{data: data}
}

func (ms *MapStorage) Data() any {
	return ms.data
}

func (ms *MapStorage) Sub(key string) Storage {
	if key == "" {
		return ms
	}
	current := ms.data
	for _, k := range parseKey(key) {
		current = valueByKey(current, k)
		if current == nil {
			break
		}
	}
	return NewMapStorage(current)
}

// ConvertTo 按 cfg 标签把配置写入结构体，找不到标签对应的键时按字段名忽略大小写匹配
//
// 配置中不存在的字段保持原值，新分配的结构体先填充 def 标签的默认值
func (ms *MapStorage) ConvertTo(object any) error {
	rv := reflect.ValueOf(object)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.Errorf("object must be a non-nil pointer, got %T", object)
	}
	return convertValue(ms.data, rv.Elem(), "")
}

func parseKey(key string) []string {
	var keys []string
	for _, part := range strings.Split(key, ".") {
		for part != "" {
			i := strings.IndexByte(part, '[')
			if i < 0 {
				keys = append(keys, part)
				break
			}
			if i > 0 {
				keys = append(keys, part[:i])
			}
			j := strings.IndexByte(part[i:], ']')
			if j < 0 {
				keys = append(keys, part[i+1:])
				break
			}
			keys = append(keys, part[i+1:i+j])
			part = part[i+j+1:]
		}
	}
	return keys
}

func valueByKey(data any, key string) any {
	switch v := data.(type) {
	case map[string]any:
		return v[key]
	case map[any]any:
		return v[key]
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(v) {
			return nil
		}
		return v[i]
	}
	return nil
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

func convertValue(src any, dst reflect.Value, path string) error {
	if src == nil {
		return nil
	}

	if dst.Kind() == reflect.Ptr {
		if dst.IsNil() {
			elem := reflect.New(dst.Type().Elem())
			if err := setDefaults(elem.Elem()); err != nil {
				return errors.WithMessage(err, path)
			}
			dst.Set(elem)
		}
		return convertValue(src, dst.Elem(), path)
	}

	sv := reflect.ValueOf(src)
	switch dst.Type() {
	case durationType:
		return convertDuration(sv, dst, path)
	case timeType:
		return convertTime(sv, dst, path)
	}

	switch dst.Kind() {
	case reflect.Struct:
		return convertStruct(sv, dst, path)
	case reflect.Map:
		return convertMap(sv, dst, path)
	case reflect.Slice:
		return convertSlice(sv, dst, path)
	case reflect.Interface:
		if sv.Type().AssignableTo(dst.Type()) {
			dst.Set(sv)
			return nil
		}
		return errors.Errorf("%s: cannot assign %T to %s", path, src, dst.Type())
	}

	return convertScalar(sv, dst, path)
}

// convertScalar ini 等格式的值都是字符串，需要按目标类型解析
func convertScalar(sv reflect.Value, dst reflect.Value, path string) error {
	if sv.Kind() == reflect.String && dst.Kind() != reflect.String {
		return setString(dst, sv.String(), path)
	}

	switch dst.Kind() {
	case reflect.String:
		switch sv.Kind() {
		case reflect.String:
			dst.SetString(sv.String())
			return nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64, reflect.Bool:
			dst.SetString(strings.TrimSpace(toString(sv)))
			return nil
		}
	case reflect.Bool:
		if sv.Kind() == reflect.Bool {
			dst.SetBool(sv.Bool())
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch sv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			dst.SetInt(sv.Int())
			return nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			dst.SetInt(int64(sv.Uint()))
			return nil
		case reflect.Float32, reflect.Float64:
			f := sv.Float()
			if f != float64(int64(f)) {
				return errors.Errorf("%s: %v is not an integer", path, f)
			}
			dst.SetInt(int64(f))
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch sv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if sv.Int() < 0 {
				return errors.Errorf("%s: %d is negative", path, sv.Int())
			}
			dst.SetUint(uint64(sv.Int()))
			return nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			dst.SetUint(sv.Uint())
			return nil
		case reflect.Float32, reflect.Float64:
			if sv.Float() < 0 {
				return errors.Errorf("%s: %v is negative", path, sv.Float())
			}
			dst.SetUint(uint64(sv.Float()))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		switch sv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			dst.SetFloat(float64(sv.Int()))
			return nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			dst.SetFloat(float64(sv.Uint()))
			return nil
		case reflect.Float32, reflect.Float64:
			dst.SetFloat(sv.Float())
			return nil
		}
	}

	return errors.Errorf("%s: cannot convert %s to %s", path, sv.Type(), dst.Type())
}

func toString(sv reflect.Value) string {
	switch sv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(sv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(sv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(sv.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(sv.Bool())
	}
	return sv.String()
}

// setString 把文本解析为目标类型，默认值和 ini 的值都走这里
func setString(dst reflect.Value, s string, path string) error {
	switch dst.Type() {
	case durationType:
		d, err := time.ParseDuration(s)
		if err != nil {
			return errors.Wrapf(err, "%s: invalid duration %q", path, s)
		}
		dst.SetInt(int64(d))
		return nil
	case timeType:
		t, err := parseTime(s)
		if err != nil {
			return errors.WithMessage(err, path)
		}
		dst.Set(reflect.ValueOf(t))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return errors.Wrapf(err, "%s: invalid bool %q", path, s)
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 0, dst.Type().Bits())
		if err != nil {
			return errors.Wrapf(err, "%s: invalid int %q", path, s)
		}
		dst.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(s, 0, dst.Type().Bits())
		if err != nil {
			return errors.Wrapf(err, "%s: invalid uint %q", path, s)
		}
		dst.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, dst.Type().Bits())
		if err != nil {
			return errors.Wrapf(err, "%s: invalid float %q", path, s)
		}
		dst.SetFloat(f)
	case reflect.Slice:
		parts := strings.Split(s, ",")
		slice := reflect.MakeSlice(dst.Type(), len(parts), len(parts))
		for i, part := range parts {
			if err := setString(slice.Index(i), strings.TrimSpace(part), path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
		dst.Set(slice)
	default:
		return errors.Errorf("%s: cannot parse %q as %s", path, s, dst.Type())
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid time %q", s)
}

func convertDuration(sv reflect.Value, dst reflect.Value, path string) error {
	switch sv.Kind() {
	case reflect.String:
		return setString(dst, sv.String(), path)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		dst.SetInt(sv.Int())
		return nil
	case reflect.Float32, reflect.Float64:
		// 浮点数按秒处理
		dst.SetInt(int64(sv.Float() * float64(time.Second)))
		return nil
	}
	return errors.Errorf("%s: cannot convert %s to time.Duration", path, sv.Type())
}

func convertTime(sv reflect.Value, dst reflect.Value, path string) error {
	switch v := sv.Interface().(type) {
	case time.Time:
		dst.Set(reflect.ValueOf(v))
		return nil
	case string:
		return setString(dst, v, path)
	case int64:
		dst.Set(reflect.ValueOf(time.Unix(v, 0)))
		return nil
	case int:
		dst.Set(reflect.ValueOf(time.Unix(int64(v), 0)))
		return nil
	}
	return errors.Errorf("%s: cannot convert %s to time.Time", path, sv.Type())
}

func convertStruct(sv reflect.Value, dst reflect.Value, path string) error {
	if sv.Kind() != reflect.Map {
		return errors.Errorf("%s: expect a map for %s, got %s", path, dst.Type(), sv.Type())
	}

	keys := make(map[string]reflect.Value, sv.Len())
	lower := make(map[string]reflect.Value, sv.Len())
	for _, k := range sv.MapKeys() {
		name := toString(reflect.ValueOf(k.Interface()))
		keys[name] = sv.MapIndex(k)
		lower[strings.ToLower(name)] = sv.MapIndex(k)
	}

	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Tag.Get("cfg")
		if name == "-" {
			continue
		}

		// 匿名嵌入的结构体展开到当前层级
		if field.Anonymous && name == "" && field.Type.Kind() == reflect.Struct {
			if err := convertStruct(sv, dst.Field(i), path); err != nil {
				return err
			}
			continue
		}

		v, ok := keys[name]
		if name == "" || !ok {
			v, ok = lower[strings.ToLower(field.Name)]
		}
		if !ok {
			continue
		}
		if err := convertValue(v.Interface(), dst.Field(i), joinPath(path, field.Name)); err != nil {
			return err
		}
	}
	return nil
}

func convertMap(sv reflect.Value, dst reflect.Value, path string) error {
	if sv.Kind() != reflect.Map {
		return errors.Errorf("%s: expect a map, got %s", path, sv.Type())
	}
	if dst.IsNil() {
		dst.Set(reflect.MakeMap(dst.Type()))
	}
	keyType := dst.Type().Key()
	for _, k := range sv.MapKeys() {
		key := reflect.New(keyType).Elem()
		if err := convertValue(k.Interface(), key, path); err != nil {
			return err
		}
		elem := reflect.New(dst.Type().Elem()).Elem()
		if err := convertValue(sv.MapIndex(k).Interface(), elem, joinPath(path, toString(reflect.ValueOf(k.Interface())))); err != nil {
			return err
		}
		dst.SetMapIndex(key, elem)
	}
	return nil
}

func convertSlice(sv reflect.Value, dst reflect.Value, path string) error {
	if sv.Kind() == reflect.String {
		return setString(dst, sv.String(), path)
	}
	if sv.Kind() != reflect.Slice && sv.Kind() != reflect.Array {
		return errors.Errorf("%s: expect a list, got %s", path, sv.Type())
	}
	slice := reflect.MakeSlice(dst.Type(), sv.Len(), sv.Len())
	for i := 0; i < sv.Len(); i++ {
		if err := convertValue(sv.Index(i).Interface(), slice.Index(i), path+"["+strconv.Itoa(i)+"]"); err != nil {
			return err
		}
	}
	dst.Set(slice)
	return nil
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
