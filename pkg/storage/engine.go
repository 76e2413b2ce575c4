package storage

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"omnisync/pkg/rga"
)

// scaleThreshold is the average documents-per-shard that triggers a
// doubling of the shard table.
const scaleThreshold = 100_000

// Engine is a sharded registry of documents hosted by this replica.
// Sharding pays for itself once a process hosts enough independent
// documents that one shared mutex would serialize unrelated edits; it
// costs nothing when a process only ever hosts a handful.
type Engine struct {
	replicaID  uint64
	shards     atomic.Pointer[[]*Shard]
	numShards  atomic.Uint32
	growthLock sync.Mutex

	reclaimCfg rga.ReclaimConfig
	orphanCfg  rga.OrphanConfig

	countDocs atomic.Int64
}

func NewEngine(initialShards int, replicaID uint64, reclaimCfg rga.ReclaimConfig, orphanCfg rga.OrphanConfig) *Engine {
	if initialShards <= 0 {
		initialShards = 64
	}
	e := &Engine{replicaID: replicaID, reclaimCfg: reclaimCfg, orphanCfg: orphanCfg}
	shards := make([]*Shard, initialShards)
	e.shards.Store(&shards)
	e.numShards.Store(uint32(initialShards))
	return e
}

// Get returns the existing document entry for id, if any.
func (e *Engine) Get(id string) (*DocumentEntry, bool) {
	shard := e.shardFor(id)
	shard.mu.RLock()
	entry, ok := shard.data[id]
	shard.mu.RUnlock()
	return entry, ok
}

// GetOrCreate returns the document entry for id, creating a fresh
// sequence owned by this engine's replica id if none exists yet.
func (e *Engine) GetOrCreate(id string) *DocumentEntry {
	shard := e.shardFor(id)

	shard.mu.RLock()
	entry, ok := shard.data[id]
	shard.mu.RUnlock()
	if ok {
		return entry
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if entry, ok := shard.data[id]; ok {
		return entry
	}

	entry = &DocumentEntry{
		ID:      id,
		Seq:     rga.NewGuarded(rga.New(e.replicaID, e.reclaimCfg, e.orphanCfg)),
		Created: time.Now(),
	}
	shard.data[id] = entry
	e.countDocs.Add(1)
	e.maybeScale()
	return entry
}

// Put installs a pre-built sequence under id, overwriting any existing
// entry. Used by snapshot restore, where the sequence already carries
// its own clock and version map from disk.
func (e *Engine) Put(id string, seq *rga.Sequence) {
	seq.SetConfig(e.reclaimCfg, e.orphanCfg)

	shard := e.shardFor(id)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, ok := shard.data[id]; !ok {
		e.countDocs.Add(1)
	}
	shard.data[id] = &DocumentEntry{ID: id, Seq: rga.NewGuarded(seq), Created: time.Now()}
	e.maybeScale()
}

func (e *Engine) Delete(id string) {
	shard := e.shardFor(id)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, ok := shard.data[id]; ok {
		delete(shard.data, id)
		e.countDocs.Add(-1)
	}
}

// Keys returns every document id currently registered, across all shards.
func (e *Engine) Keys() []string {
	arr := *e.shards.Load()
	var keys []string
	for _, shard := range arr {
		if shard == nil {
			continue
		}
		shard.mu.RLock()
		for k := range shard.data {
			keys = append(keys, k)
		}
		shard.mu.RUnlock()
	}
	return keys
}

func (e *Engine) shardFor(id string) *Shard {
	idx := hashKey(id) & (e.numShards.Load() - 1)
	arr := *e.shards.Load()

	shard := arr[idx]
	if shard != nil {
		return shard
	}

	e.growthLock.Lock()
	defer e.growthLock.Unlock()

	if arr[idx] == nil {
		arr[idx] = &Shard{data: make(map[string]*DocumentEntry, 128)}
	}
	return arr[idx]
}

func (e *Engine) maybeScale() {
	total := e.countDocs.Load()
	nShards := int64(e.numShards.Load())

	if total/nShards > scaleThreshold {
		go e.growShards()
	}
}

func (e *Engine) growShards() {
	e.growthLock.Lock()
	defer e.growthLock.Unlock()

	current := e.numShards.Load()
	if total := e.countDocs.Load(); total/int64(current) < scaleThreshold {
		return
	}

	newCount := current * 2
	oldArr := *e.shards.Load()
	newArr := make([]*Shard, newCount)

	for _, old := range oldArr {
		if old == nil {
			continue
		}
		old.mu.RLock()
		for k, v := range old.data {
			idx := hashKey(k) & (newCount - 1)
			if newArr[idx] == nil {
				newArr[idx] = &Shard{data: make(map[string]*DocumentEntry, 128)}
			}
			newArr[idx].data[k] = v
		}
		old.mu.RUnlock()
	}

	e.shards.Store(&newArr)
	e.numShards.Store(newCount)
	slog.Info(fmt.Sprintf("[storage] scaled document registry to %d shards", newCount))
}
