package store

import (
	"errors"
	"log"
	"time"
)

// Retry policy defaults for transient backend failures.
const (
	DefaultMaxAttempts = 4
	DefaultBaseDelay   = 500 * time.Millisecond
)

// RetryingStore decorates a RecordStore with bounded
// exponential-backoff retries for transient failures. Exhaustion fails the
// single operation, never the whole run.
type RetryingStore struct {
	inner       RecordStore
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(time.Duration)
}

// NewRetryingStore wraps a RecordStore with the default retry policy.
func NewRetryingStore(inner RecordStore) *RetryingStore {
	return &RetryingStore{
		inner:       inner,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		sleep:       time.Sleep,
	}
}

// retry runs op, backing off exponentially on transient errors.
func (r *RetryingStore) retry(name string, op func() error) error {
	delay := r.baseDelay

	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err = op()
		if err == nil || !IsTransient(err) {
			return err
		}

		if attempt < r.maxAttempts {
			log.Printf("[Store] %s transient failure (attempt %d/%d), retrying in %v: %v",
				name, attempt, r.maxAttempts, delay, err)
			r.sleep(delay)
			delay *= 2
		}
	}

	return errors.Join(ErrRetriesExhausted, err)
}

func (r *RetryingStore) ReadAll() ([][]string, error) {
	var rows [][]string
	err := r.retry("read_all", func() error {
		var opErr error
		rows, opErr = r.inner.ReadAll()
		return opErr
	})
	return rows, err
}

func (r *RetryingStore) Append(row []string) error {
	return r.retry("append", func() error { return r.inner.Append(row) })
}

func (r *RetryingStore) AppendMany(rows [][]string) error {
	return r.retry("append_many", func() error { return r.inner.AppendMany(rows) })
}

func (r *RetryingStore) Update(rowNumber int, row []string) error {
	return r.retry("update", func() error { return r.inner.Update(rowNumber, row) })
}

func (r *RetryingStore) Delete(rowNumber int) error {
	return r.retry("delete", func() error { return r.inner.Delete(rowNumber) })
}

func (r *RetryingStore) Find(column int, value string) (int, error) {
	var rowNumber int
	err := r.retry("find", func() error {
		var opErr error
		rowNumber, opErr = r.inner.Find(column, value)
		return opErr
	})
	return rowNumber, err
}
