// Package testutil holds helpers shared by store and service tests.
package testutil

import (
	"errors"
	"sync"

	dErrors "paam/pkg/domain-errors"
	"paam/pkg/platform/sentinel"
)

// Outcomes counts how a burst of concurrent calls ended.
type Outcomes struct {
	Successes int32
	Conflicts int32
	NotFounds int32
	Errors    int32
	// Failures keeps every error that was not a conflict or a miss.
	Failures []error
}

// Total is the number of calls made.
func (o *Outcomes) Total() int32 {
	return o.Successes + o.Conflicts + o.NotFounds + o.Errors
}

// RunConcurrent calls fn n times in parallel. All goroutines are released
// together so the calls actually overlap.
func RunConcurrent(n int, fn func(i int) error) *Outcomes {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		start = make(chan struct{})
		out   = &Outcomes{}
	)

	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := fn(i)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				out.Successes++
			case isConflict(err):
				out.Conflicts++
			case isNotFound(err):
				out.NotFounds++
			default:
				out.Errors++
				out.Failures = append(out.Failures, err)
			}
		}()
	}
	close(start)
	wg.Wait()
	return out
}

func isConflict(err error) bool {
	return errors.Is(err, sentinel.ErrConflict) || dErrors.HasCode(err, dErrors.CodeConflict)
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound)
}
