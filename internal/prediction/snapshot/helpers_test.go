package snapshot

import (
	"strings"

	"work-advisor/internal/common/config"

	"github.com/alicebob/miniredis/v2"
)

func configForMiniredis(mr *miniredis.Miniredis) config.RedisConfig {
	return config.RedisConfig{Address: mr.Addr()}
}

func indexOf(s, sub string) int {
	return strings.Index(s, sub)
}
