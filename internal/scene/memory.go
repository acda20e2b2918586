package scene

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryBinding keeps records in process memory.
type MemoryBinding struct {
	mu      sync.Mutex
	records []Record // oldest first
}

// NewMemoryBinding creates an empty binding.
func NewMemoryBinding() *MemoryBinding {
	return &MemoryBinding{}
}

// Materialize stores r as live. An empty id is filled in.
func (b *MemoryBinding) Materialize(ctx context.Context, r Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	for _, existing := range b.records {
		if existing.ID == r.ID {
			return "", fmt.Errorf("%w: %s", ErrDuplicateScene, r.ID)
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	r.RemovedAt = nil
	b.records = append(b.records, r)
	return r.ID, nil
}

// Cleanup marks every live record as removed.
func (b *MemoryBinding) Cleanup(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now().UTC()
	n := 0
	for i := range b.records {
		if b.records[i].RemovedAt == nil {
			removed := now
			b.records[i].RemovedAt = &removed
			n++
		}
	}
	return n, nil
}

// Live returns the records not yet cleaned up, oldest first.
func (b *MemoryBinding) Live(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var live []Record
	for _, r := range b.records {
		if r.Live() {
			live = append(live, r)
		}
	}
	return live, nil
}

// List returns up to limit records, newest first.
func (b *MemoryBinding) List(ctx context.Context, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Record, 0, n)
	for i := len(b.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, b.records[i])
	}
	return out, nil
}
