package store

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// flakyStore fails with the configured error until failures runs out.
type flakyStore struct {
	failures int
	err      error
	calls    int
	rows     [][]string
}

func (s *flakyStore) op() error {
	s.calls++
	if s.failures > 0 {
		s.failures--
		return s.err
	}
	return nil
}

func (s *flakyStore) ReadAll() ([][]string, error) {
	if err := s.op(); err != nil {
		return nil, err
	}
	return s.rows, nil
}

func (s *flakyStore) Append(row []string) error {
	if err := s.op(); err != nil {
		return err
	}
	s.rows = append(s.rows, row)
	return nil
}

func (s *flakyStore) AppendMany(rows [][]string) error {
	if err := s.op(); err != nil {
		return err
	}
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *flakyStore) Update(rowNumber int, row []string) error { return s.op() }
func (s *flakyStore) Delete(rowNumber int) error               { return s.op() }

func (s *flakyStore) Find(column int, value string) (int, error) {
	if err := s.op(); err != nil {
		return 0, err
	}
	return 0, ErrRowNotFound
}

func newTestRetryingStore(inner RecordStore, delays *[]time.Duration) *RetryingStore {
	r := NewRetryingStore(inner)
	r.sleep = func(d time.Duration) {
		if delays != nil {
			*delays = append(*delays, d)
		}
	}
	return r
}

func TestRetryRecoversFromTransientFailures(t *testing.T) {
	inner := &flakyStore{
		failures: 2,
		err:      fmt.Errorf("%w: rate limited", ErrTransient),
	}
	var delays []time.Duration
	r := newTestRetryingStore(inner, &delays)

	if err := r.Append([]string{"Google"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
	if len(delays) != 2 || delays[0] != DefaultBaseDelay || delays[1] != 2*DefaultBaseDelay {
		t.Errorf("backoff delays = %v", delays)
	}
}

func TestRetryExhaustion(t *testing.T) {
	inner := &flakyStore{
		failures: 100,
		err:      fmt.Errorf("%w: backend down", ErrTransient),
	}
	r := newTestRetryingStore(inner, nil)

	err := r.Update(2, []string{"Google"})
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("err = %v, want ErrRetriesExhausted", err)
	}
	if !errors.Is(err, ErrTransient) {
		t.Error("the underlying transient error should be joined in")
	}
	if inner.calls != DefaultMaxAttempts {
		t.Errorf("calls = %d, want %d", inner.calls, DefaultMaxAttempts)
	}
}

func TestRetryDoesNotRetryPermanentErrors(t *testing.T) {
	inner := &flakyStore{
		failures: 100,
		err:      errors.New("constraint violation"),
	}
	r := newTestRetryingStore(inner, nil)

	err := r.Delete(2)
	if err == nil || errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("err = %v, want the permanent error unchanged", err)
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1", inner.calls)
	}
}

func TestRetryPassesThroughNotFound(t *testing.T) {
	inner := &flakyStore{}
	r := newTestRetryingStore(inner, nil)

	if _, err := r.Find(ColCompany, "Missing"); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("err = %v, want ErrRowNotFound", err)
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1", inner.calls)
	}
}

func TestRetryReadAllReturnsRows(t *testing.T) {
	inner := &flakyStore{
		failures: 1,
		err:      fmt.Errorf("%w: timeout", ErrTransient),
		rows:     [][]string{{"Google", "Software Engineer"}},
	}
	r := newTestRetryingStore(inner, nil)

	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0][ColCompany] != "Google" {
		t.Errorf("rows = %v", rows)
	}
}
