package storage

// Storage 解码后的配置树
type Storage interface {
	// Sub 获取子配置，key 用点号分隔多级，[n] 表示数组下标
	// 例如 "database.replicas[0].dsn"
	Sub(key string) Storage

	// ConvertTo 将配置写入 object，object 必须是指针
	ConvertTo(object any) error
}
