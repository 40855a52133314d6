package driver

import (
	"strconv"

	"tacc/internal/project"
	"tacc/internal/regalloc"
)

// CacheKey: H(content || schema || registers || prefix). Только регистровый
// файл влияет на вывод бэкенда, остальные опции не входят в ключ.
func CacheKey(content [32]byte, conf regalloc.Config) project.Digest {
	conf = conf.Normalize()
	return project.Combine(project.Digest(content),
		strconv.Itoa(int(diskCacheSchemaVersion)),
		strconv.Itoa(conf.Registers),
		conf.Prefix,
	)
}
