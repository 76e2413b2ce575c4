package storage

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"omnisync/pkg/rga"
)

// Store pairs a document Engine with a snapshot directory on disk.
// Snapshots are written when SaveAll is called; Store runs no timer of
// its own.
type Store struct {
	engine  *Engine
	snapDir string
}

func NewStore(engine *Engine, snapDir string) *Store {
	return &Store{engine: engine, snapDir: snapDir}
}

func (s *Store) Engine() *Engine { return s.engine }

// Get returns the document entry for id, creating it if necessary.
func (s *Store) Get(id string) *DocumentEntry {
	return s.engine.GetOrCreate(id)
}

func (s *Store) Delete(id string) {
	s.engine.Delete(id)
}

func (s *Store) snapshotPath(id string) string {
	return filepath.Join(s.snapDir, id+".omni")
}

// SaveAll snapshots every registered document to snapDir concurrently,
// returning the first error encountered (if any) once every save has
// completed.
func (s *Store) SaveAll(ctx context.Context) error {
	if err := os.MkdirAll(s.snapDir, 0o755); err != nil {
		return err
	}

	g, _ := errgroup.WithContext(ctx)
	for _, id := range s.engine.Keys() {
		id := id
		g.Go(func() error {
			return s.saveOne(id)
		})
	}
	return g.Wait()
}

func (s *Store) saveOne(id string) error {
	entry, ok := s.engine.Get(id)
	if !ok {
		return nil
	}

	f, err := os.CreateTemp(s.snapDir, id+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := f.Name()

	var saveErr error
	entry.Seq.WithSequence(func(seq *rga.Sequence) {
		saveErr = seq.Save(f)
	})
	if cerr := f.Close(); saveErr == nil {
		saveErr = cerr
	}
	if saveErr != nil {
		os.Remove(tmpPath)
		return saveErr
	}
	return os.Rename(tmpPath, s.snapshotPath(id))
}

// LoadAll restores every *.omni snapshot found in snapDir into the
// engine, keyed by file name with the extension stripped.
func (s *Store) LoadAll() error {
	entries, err := os.ReadDir(s.snapDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".omni" {
			continue
		}
		id := de.Name()[:len(de.Name())-len(".omni")]
		if err := s.loadOne(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadOne(id string) error {
	f, err := os.Open(s.snapshotPath(id))
	if err != nil {
		return err
	}
	defer f.Close()

	seq, err := rga.Load(f)
	if err != nil {
		return err
	}
	s.engine.Put(id, seq)
	return nil
}
