package partitioner

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// workQueue. LIFO queue of pending subproblems shared by the scheduler workers.
type workQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []subproblem
	busy   int // number of popped subproblems whose children were not pushed yet
	closed bool
}

func newWorkQueue() *workQueue {
	q := &workQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *workQueue) push(items ...subproblem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
	q.cond.Broadcast()
}

// pop. blocks while the queue is empty but some worker may still push children.
// ok is false once all work is done or the queue was closed.
func (q *workQueue) pop() (subproblem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && q.busy > 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed || len(q.items) == 0 {
		return subproblem{}, false
	}

	item := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	q.busy++
	return item, true
}

// done. finish a popped subproblem and push its children.
func (q *workQueue) done(children ...subproblem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, children...)
	q.busy--
	q.cond.Broadcast()
}

func (q *workQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

type scheduler struct {
	rb                  *RecursiveBisection
	numWorkers          int
	sequentialThreshold int
}

func newScheduler(rb *RecursiveBisection, numWorkers, sequentialThreshold int) *scheduler {
	return &scheduler{rb: rb, numWorkers: max(1, numWorkers), sequentialThreshold: sequentialThreshold}
}

/*
run. numWorkers goroutines pull subproblems from the shared queue until no subproblem is pending.
a failing worker or a cancelled ctx closes the queue and stops every worker.
*/
func (s *scheduler) run(ctx context.Context, roots []subproblem) error {
	q := newWorkQueue()
	q.push(roots...)

	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, q.close)
	defer stop()

	numVertices := s.rb.graph.NumberOfVertices()
	for i := 0; i < s.numWorkers; i++ {
		g.Go(func() error {
			ws := newWorkspace(numVertices)
			for {
				sub, ok := q.pop()
				if !ok {
					return ctx.Err()
				}

				children, err := s.process(gctx, ws, sub)
				if err != nil {
					q.done()
					return err
				}
				q.done(children...)
			}
		})
	}

	return g.Wait()
}

// process. small subproblems are finished in place, larger ones hand their children back to the queue.
func (s *scheduler) process(ctx context.Context, ws *workspace, sub subproblem) ([]subproblem, error) {
	if len(sub.nodes) > s.sequentialThreshold {
		return s.rb.bisect(ws, sub)
	}

	stack := []subproblem{sub}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := s.rb.bisect(ws, cur)
		if err != nil {
			return nil, err
		}
		stack = append(stack, children...)
	}
	return nil, nil
}
