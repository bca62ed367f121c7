package filestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// lockStaleAfter is the age after which a leftover lock file from a crashed
// writer is removed.
const lockStaleAfter = 30 * time.Second

var errLocked = errors.New("rule file is locked by another writer")

// RuleRepository persists the rule collection as a JSON file. Writes go to a
// temporary file in the same directory which is then renamed over the target.
// Update serializes writers through a sibling <path>.lock file.
type RuleRepository struct {
	path string
	mu   sync.Mutex
}

func NewRuleRepository(path string) *RuleRepository {
	return &RuleRepository{path: path}
}

func (r *RuleRepository) Load(ctx context.Context) ([]*rule.Rule, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*rule.Rule{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", r.path)
	}
	return rule.UnmarshalCollection(data)
}

func (r *RuleRepository) Save(ctx context.Context, rules []*rule.Rule) error {
	data, err := rule.MarshalCollection(rules)
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write rules")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to sync rules")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return errors.Wrapf(err, "failed to replace %s", r.path)
	}
	return nil
}

// Update applies fn to the file contents while holding the lock file.
func (r *RuleRepository) Update(ctx context.Context, fn rule.UpdateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	unlock, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := r.Load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return r.Save(ctx, next)
}

func (r *RuleRepository) lock(ctx context.Context) (func(), error) {
	lockPath := r.path + ".lock"
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", dir)
	}

	err := retry.Do(
		func() error {
			f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
			if err == nil {
				return f.Close()
			}
			if !os.IsExist(err) {
				return retry.Unrecoverable(errors.Wrapf(err, "failed to create %s", lockPath))
			}
			if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > lockStaleAfter {
				_ = os.Remove(lockPath)
			}
			return errLocked
		},
		retry.Context(ctx),
		retry.Attempts(50),
		retry.Delay(10*time.Millisecond),
		retry.MaxDelay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return func() { _ = os.Remove(lockPath) }, nil
}
