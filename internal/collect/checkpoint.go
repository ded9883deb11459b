package collect

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/icebreakerlabs/ghgraph/internal/errors"
)

var checkpointBucket = []byte("processed")

// Checkpoint records which targets a run has completed, so an interrupted
// batch can resume without re-fetching. Backed by a local bolt database.
type Checkpoint struct {
	db *bbolt.DB
}

// OpenCheckpoint opens (or creates) the checkpoint database at path.
func OpenCheckpoint(path string) (*Checkpoint, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.PersistenceError(err, "open checkpoint database").WithContext("path", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(checkpointBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.PersistenceError(err, "create checkpoint bucket")
	}
	return &Checkpoint{db: db}, nil
}

func checkpointKey(t Target) []byte {
	return []byte(fmt.Sprintf("%s@%s/%s", t.Username, t.Owner, t.Repo))
}

// Done reports whether the target was already processed.
func (c *Checkpoint) Done(t Target) (bool, error) {
	var done bool
	err := c.db.View(func(tx *bbolt.Tx) error {
		done = tx.Bucket(checkpointBucket).Get(checkpointKey(t)) != nil
		return nil
	})
	if err != nil {
		return false, errors.PersistenceError(err, "read checkpoint")
	}
	return done, nil
}

// Mark records the target as processed with the completion timestamp.
func (c *Checkpoint) Mark(t Target) error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(checkpointBucket).Put(checkpointKey(t), []byte(time.Now().UTC().Format(time.RFC3339)))
	})
	if err != nil {
		return errors.PersistenceError(err, "write checkpoint")
	}
	return nil
}

// Close releases the database.
func (c *Checkpoint) Close() error {
	return c.db.Close()
}
