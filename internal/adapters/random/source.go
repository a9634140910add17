package random

import (
	"time"

	"golang.org/x/exp/rand"
)

// NewLockedSource возвращает генератор, безопасный для конкурентных запросов.
// Нулевой seed заменяется текущим временем.
func NewLockedSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := &rand.LockedSource{}
	src.Seed(seed)
	return rand.New(src)
}
