package boltstore

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

var bucketName = []byte("automation")

const openTimeout = 5 * time.Second

// RuleRepository persists the rule collection as a single value in a bbolt
// file. bbolt locks the file, so only one process can have it open; Open in
// a second process fails after openTimeout.
type RuleRepository struct {
	db *bolt.DB
}

// Open opens or creates the bolt database at path.
func Open(path string) (*RuleRepository, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errors.Wrapf(err, "bolt db %s is in use by another process", path)
		}
		return nil, errors.Wrapf(err, "failed to open bolt db %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create bucket")
	}
	return &RuleRepository{db: db}, nil
}

func (r *RuleRepository) Close() error {
	return r.db.Close()
}

func (r *RuleRepository) Load(ctx context.Context) ([]*rule.Rule, error) {
	var data []byte
	err := r.db.View(func(tx *bolt.Tx) error {
		// Values are only valid inside the transaction.
		if v := tx.Bucket(bucketName).Get([]byte(rule.StorageKey)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read rules")
	}
	return rule.UnmarshalCollection(data)
}

func (r *RuleRepository) Save(ctx context.Context, rules []*rule.Rule) error {
	data, err := rule.MarshalCollection(rules)
	if err != nil {
		return err
	}
	err = r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(rule.StorageKey), data)
	})
	if err != nil {
		return errors.Wrap(err, "failed to write rules")
	}
	return nil
}

// Update applies fn inside a single read-write transaction.
func (r *RuleRepository) Update(ctx context.Context, fn rule.UpdateFunc) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		current, err := rule.UnmarshalCollection(b.Get([]byte(rule.StorageKey)))
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
		if err := b.Put([]byte(rule.StorageKey), data); err != nil {
			return errors.Wrap(err, "failed to write rules")
		}
		return nil
	})
}
