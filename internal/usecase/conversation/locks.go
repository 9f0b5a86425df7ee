package conversation

import (
	"context"
	"sync"
)

// keyedMutex serialises work per conversation id
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock returns the matching unlock func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.mu.Lock()

	return func() {
		m.mu.Unlock()

		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// inflight remembers how to cancel the latest chat and ingest request of every conversation
type inflight struct {
	mu      sync.Mutex
	entries map[string]*inflightEntry
}

type inflightEntry struct {
	chat      context.CancelFunc
	chatGen   uint64
	ingest    context.CancelFunc
	ingestGen uint64
}

func newInflight() *inflight {
	return &inflight{entries: make(map[string]*inflightEntry)}
}

type requestKind int

const (
	kindChat requestKind = iota
	kindIngest
)

// replace registers cancel as the latest request of its kind and cancels the one it supersedes.
func (f *inflight) replace(id string, kind requestKind, generation uint64, cancel context.CancelFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.entries[id]
	if !ok {
		e = &inflightEntry{}
		f.entries[id] = e
	}

	switch kind {
	case kindChat:
		if e.chat != nil {
			e.chat()
		}
		e.chat, e.chatGen = cancel, generation
	case kindIngest:
		if e.ingest != nil {
			e.ingest()
		}
		e.ingest, e.ingestGen = cancel, generation
	}
}

// release forgets a finished request unless a newer one replaced it.
func (f *inflight) release(id string, kind requestKind, generation uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.entries[id]
	if !ok {
		return
	}

	switch kind {
	case kindChat:
		if e.chatGen == generation {
			e.chat = nil
		}
	case kindIngest:
		if e.ingestGen == generation {
			e.ingest = nil
		}
	}

	if e.chat == nil && e.ingest == nil {
		delete(f.entries, id)
	}
}

// cancel aborts everything in flight for a conversation.
func (f *inflight) cancel(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.entries[id]
	if !ok {
		return
	}
	if e.chat != nil {
		e.chat()
	}
	if e.ingest != nil {
		e.ingest()
	}
	delete(f.entries, id)
}

func (f *inflight) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
