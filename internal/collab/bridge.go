package collab

import (
	"collaborative-hiring-intake/internal/worker"
	"context"
	"fmt"
	"time"
)

// FormWriter is the slice of the document repository the bridge needs.
type FormWriter interface {
	ReplaceData(ctx context.Context, formID string, data map[string]any) error
	SetField(ctx context.Context, formID string, path string, value any) error
}

const persistTimeout = 10 * time.Second

// Bridge is the one-way writer from protocol events to storage. Calls return
// immediately; the actual write runs on the worker pool, and a failed write
// is logged by the pool and otherwise lost. Storage converges on the next
// successful write from any collaborator.
type Bridge struct {
	writer FormWriter
	pool   *worker.Pool
}

func NewBridge(writer FormWriter, pool *worker.Pool) *Bridge {
	return &Bridge{writer: writer, pool: pool}
}

func (b *Bridge) SaveForm(formID string, data map[string]any) {
	b.pool.Submit(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, persistTimeout)
		defer cancel()
		if err := b.writer.ReplaceData(ctx, formID, data); err != nil {
			return fmt.Errorf("persist form %s: %w", formID, err)
		}
		return nil
	})
}

func (b *Bridge) SaveField(formID, field string, value any) {
	b.pool.Submit(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, persistTimeout)
		defer cancel()
		if err := b.writer.SetField(ctx, formID, field, value); err != nil {
			return fmt.Errorf("persist field %s of form %s: %w", field, formID, err)
		}
		return nil
	})
}
