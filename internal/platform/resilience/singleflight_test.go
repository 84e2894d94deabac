package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err, _ := g.Do("group-42", func() (any, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return []int64{1, 2}, nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_SequentialCallsRunSeparately(t *testing.T) {
	var g SingleFlight
	var counter int32

	for i := 0; i < 3; i++ {
		_, err, shared := g.Do("group-42", func() (any, error) {
			atomic.AddInt32(&counter, 1)
			return nil, nil
		})
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if shared {
			t.Fatalf("call %d unexpectedly shared", i)
		}
	}

	if got := atomic.LoadInt32(&counter); got != 3 {
		t.Fatalf("expected 3 executions, got %d", got)
	}
}
