package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/prodo-app/prodo/internal/config"
	"github.com/prodo-app/prodo/internal/sqlstore"
	"github.com/prodo-app/prodo/internal/task"
)

// backend is the store surface the commands run against. The JSON snapshot
// store and the MySQL store both satisfy it.
type backend interface {
	Add(ctx context.Context, d task.Draft) (task.Task, error)
	Update(ctx context.Context, id string, p task.Patch) (task.Task, error)
	Delete(ctx context.Context, id string) error
	ToggleDone(ctx context.Context, id string) (task.Task, error)
	List(ctx context.Context, q task.Query) ([]task.Task, error)
	Close() error
}

// openBackend picks the SQL store when a DSN is configured, otherwise the
// snapshot store at cfg.DataFile.
func openBackend(cfg *config.Config) (backend, error) {
	if cfg.DBDSN != "" {
		return sqlstore.New(cfg.DBDSN)
	}
	return openSnapshot(cfg.DataFile)
}

// snapshotBackend adapts the in-memory store to the backend interface,
// saving the snapshot after every mutation.
type snapshotBackend struct {
	store *task.Store
	path  string
}

func openSnapshot(path string) (*snapshotBackend, error) {
	f, err := task.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &snapshotBackend{store: task.NewStore(), path: path}, nil
		}
		return nil, err
	}
	return &snapshotBackend{store: task.NewStore(f.Tasks...), path: path}, nil
}

func (b *snapshotBackend) save() error {
	return b.store.Snapshot().Save(b.path)
}

func (b *snapshotBackend) Add(_ context.Context, d task.Draft) (task.Task, error) {
	t, err := b.store.Add(d)
	if err != nil {
		return task.Task{}, err
	}
	return t, b.save()
}

func (b *snapshotBackend) Update(_ context.Context, id string, p task.Patch) (task.Task, error) {
	t, err := b.store.Update(id, p)
	if err != nil {
		return task.Task{}, err
	}
	return t, b.save()
}

func (b *snapshotBackend) Delete(_ context.Context, id string) error {
	if err := b.store.Delete(id); err != nil {
		return err
	}
	return b.save()
}

func (b *snapshotBackend) ToggleDone(_ context.Context, id string) (task.Task, error) {
	t, err := b.store.ToggleDone(id)
	if err != nil {
		return task.Task{}, err
	}
	return t, b.save()
}

func (b *snapshotBackend) List(_ context.Context, q task.Query) ([]task.Task, error) {
	return b.store.List(q), nil
}

func (b *snapshotBackend) Close() error { return nil }
