package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// RandSource 引擎需要的亂數來源，*rand.Rand 即滿足此介面。
// 測試可注入固定序列以驗證確定性的結果。
type RandSource interface {
	IntN(n int) int
}

// lockedSource 讓多個房間共用同一個亂數來源 (*rand.Rand 本身非 goroutine safe)
type lockedSource struct {
	mu  sync.Mutex
	src RandSource
}

func (l *lockedSource) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

// NewSeededRand 以固定種子建立 PCG 亂數來源 (重播/測試用)
func NewSeededRand(seed1, seed2 uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed1, seed2))
}

func newDefaultRand() *rand.Rand {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return NewSeededRand(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:]))
}

// shuffle Fisher–Yates 洗牌 (原地、無偏)
func shuffle(rng RandSource, ids []string) {
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}
