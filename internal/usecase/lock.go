package usecase

import "sync"

// StateLock serializes every state-mutating operation across all protocol
// components, mirroring the single-writer execution model the protocol
// assumes. Each mutating entry point holds the lock for its full duration;
// reads go straight to committed state and never take it.
type StateLock struct {
	mu sync.Mutex
}

func (l *StateLock) Lock()   { l.mu.Lock() }
func (l *StateLock) Unlock() { l.mu.Unlock() }
