package engine

import (
	"hash/fnv"
	"sync"
)

const lockShards = 64

// keyLocks serializes turns per session key so a webhook retry cannot
// interleave with an in-flight read-modify-write for the same session.
// Sharded: unrelated keys may share a mutex, which only costs latency.
type keyLocks struct {
	shards [lockShards]sync.Mutex
}

func (l *keyLocks) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	m := &l.shards[h.Sum32()%lockShards]
	m.Lock()
	return m.Unlock
}
