package storage

import (
	"sync"
	"time"

	"omnisync/pkg/rga"
)

// DocumentEntry is one replicated sequence hosted by this process, keyed
// by an operator-chosen document id (a filename, a note id, anything
// stable across restarts since it doubles as the snapshot file name).
type DocumentEntry struct {
	ID      string
	Seq     *rga.Guarded
	Created time.Time
}

type Shard struct {
	mu   sync.RWMutex
	data map[string]*DocumentEntry
}
