package memstore

import (
	"context"
	"sync"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// RuleRepository keeps the serialized rule collection in process memory.
// It goes through the same blob codec as the durable backends, so loads
// never share pointers with earlier saves.
type RuleRepository struct {
	mu   sync.RWMutex
	blob []byte
}

func NewRuleRepository() *RuleRepository {
	return &RuleRepository{}
}

func (r *RuleRepository) Load(ctx context.Context) ([]*rule.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return rule.UnmarshalCollection(r.blob)
}

func (r *RuleRepository) Save(ctx context.Context, rules []*rule.Rule) error {
	data, err := rule.MarshalCollection(rules)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.blob = data
	r.mu.Unlock()
	return nil
}

// Update applies fn to the stored collection while holding the write lock.
func (r *RuleRepository) Update(ctx context.Context, fn rule.UpdateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := rule.UnmarshalCollection(r.blob)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	data, err := rule.MarshalCollection(next)
	if err != nil {
		return err
	}
	r.blob = data
	return nil
}

// Blob returns the raw persisted bytes.
func (r *RuleRepository) Blob() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]byte(nil), r.blob...)
}
