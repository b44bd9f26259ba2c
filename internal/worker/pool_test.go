package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// mockResult implements Result
type mockResult struct {
	index int
	err   error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	index     int
	duration  time.Duration
	shouldErr bool
	executed  *int32
	active    *int32
	peak      *int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.active != nil {
		n := atomic.AddInt32(j.active, 1)
		defer atomic.AddInt32(j.active, -1)
		for {
			old := atomic.LoadInt32(j.peak)
			if n <= old || atomic.CompareAndSwapInt32(j.peak, old, n) {
				break
			}
		}
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{index: j.index, err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{index: j.index, err: errors.New("job error")}
	}
	return &mockResult{index: j.index}
}

func TestNewPool(t *testing.T) {
	if NewPool(5).Workers() != 5 {
		t.Errorf("expected 5 workers, got %d", NewPool(5).Workers())
	}
	if NewPool(0).Workers() != 1 {
		t.Errorf("expected default 1 worker for 0 input")
	}
	if NewPool(-1).Workers() != 1 {
		t.Errorf("expected default 1 worker for negative input")
	}
}

func TestPool_RunPreservesOrder(t *testing.T) {
	pool := NewPool(3)

	var executed int32
	count := 25
	jobs := make([]Job, count)
	for i := range jobs {
		// later jobs finish first
		jobs[i] = &mockJob{index: i, executed: &executed, duration: time.Duration(count-i) * time.Millisecond}
	}

	results := pool.Run(context.Background(), jobs)

	if len(results) != count {
		t.Fatalf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
	for i, r := range results {
		if got := r.(*mockResult).index; got != i {
			t.Errorf("result %d came from job %d", i, got)
		}
	}
}

func TestPool_Concurrency(t *testing.T) {
	pool := NewPool(2)

	var active, peak int32
	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = &mockJob{index: i, duration: 10 * time.Millisecond, active: &active, peak: &peak}
	}

	pool.Run(context.Background(), jobs)

	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Errorf("expected at most 2 concurrent jobs, saw %d", p)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(2)
	jobs := []Job{
		&mockJob{index: 0},
		&mockJob{index: 1, shouldErr: true},
		&mockJob{index: 2},
	}

	results := pool.Run(context.Background(), jobs)

	if results[1].GetError() == nil {
		t.Error("expected error from job 1")
	}
	if Failed(results) != 1 {
		t.Errorf("expected 1 failure, got %d", Failed(results))
	}
}

func TestPool_Empty(t *testing.T) {
	results := NewPool(4).Run(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestPool_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := make([]Job, 4)
	for i := range jobs {
		jobs[i] = &mockJob{index: i, duration: time.Second}
	}

	start := time.Now()
	results := NewPool(2).Run(ctx, jobs)
	if time.Since(start) > 500*time.Millisecond {
		t.Error("cancelled run should return promptly")
	}
	for i, r := range results {
		if !errors.Is(r.GetError(), context.Canceled) {
			t.Errorf("job %d: expected context.Canceled, got %v", i, r.GetError())
		}
	}
}
