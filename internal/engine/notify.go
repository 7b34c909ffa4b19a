package engine

import (
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ultraframe/shmring/internal/diag"
	"github.com/ultraframe/shmring/internal/status"
)

// watchPollInterval is the notification watcher's poll granularity (spec
// §4.5 "Notification loop", documented default 1-5 ms).
const watchPollInterval = 3 * time.Millisecond

// Callback receives each newly published frame in strictly sequential
// order (spec §4.5 "no concurrent invocation of the same callback is
// permitted").
type Callback func(Frame)

type watcher struct {
	id     int
	cancel chan struct{}
	done   chan struct{}
}

// watcherSet manages this Engine's registered notification watchers,
// running each on panjf2000/ants/v2's goroutine pool rather than a bare
// `go` statement, and using golang.org/x/sync/errgroup to wait for every
// watcher to actually exit on Close (spec §5 "honors cancellation within
// one poll interval").
type watcherSet struct {
	engine *Engine

	mu      sync.Mutex
	nextID  int
	active  map[int]*watcher
	pool    *ants.Pool
	group   *errgroup.Group
}

func newWatcherSet(e *Engine) *watcherSet {
	pool, err := ants.NewPool(64, ants.WithNonblocking(false))
	if err != nil {
		// ants.NewPool only fails on a non-positive size; 64 is a literal,
		// so this is unreachable in practice, but degrade to a nil pool
		// rather than panic if the library's validation ever tightens.
		diag.Record(diag.Event{Kind: diag.KindSoftCapability, Segment: e.cfg.Name,
			Detail: "notification watcher pool unavailable: " + err.Error()})
	}
	return &watcherSet{
		engine: e,
		active: make(map[int]*watcher),
		pool:   pool,
		group:  &errgroup.Group{},
	}
}

// RegisterNotification spawns one cooperative watcher that consumes newly
// published frames via ReadNextFrame and invokes cb for each, in
// publication order.
func (e *Engine) RegisterNotification(cb Callback) (int, error) {
	return e.watchers.register(cb)
}

// UnregisterNotification cancels the watcher with id and waits for it to
// observe cancellation (bounded by one poll interval).
func (e *Engine) UnregisterNotification(id int) error {
	return e.watchers.unregister(id)
}

func (ws *watcherSet) register(cb Callback) (int, error) {
	if ws.pool == nil {
		return 0, status.New(status.InternalError, nil)
	}

	ws.mu.Lock()
	id := ws.nextID
	ws.nextID++
	w := &watcher{id: id, cancel: make(chan struct{}), done: make(chan struct{})}
	ws.active[id] = w
	ws.mu.Unlock()

	// ants.Pool.Submit only enqueues the task; it returns as soon as the
	// pool has accepted it, not once ws.run has actually returned. closeAll
	// needs to block until the watcher goroutine has genuinely stopped
	// touching the engine's mapping, so the errgroup func waits on w.done
	// (closed by run's deferred cleanup) rather than on Submit itself.
	ws.group.Go(func() error {
		if err := ws.pool.Submit(func() {
			defer close(w.done)
			ws.run(w, cb)
		}); err != nil {
			close(w.done)
			return err
		}
		<-w.done
		return nil
	})
	return id, nil
}

func (ws *watcherSet) run(w *watcher, cb Callback) {
	for {
		select {
		case <-w.cancel:
			return
		default:
		}

		fr, err := ws.engine.ReadNextFrame(watchPollInterval)
		if err != nil {
			switch status.Of(err) {
			case status.BufferEmpty, status.Timeout:
				continue
			default:
				diag.Record(diag.Event{Kind: diag.KindSegmentStale, Segment: ws.engine.cfg.Name,
					Detail: "notification watcher read error: " + err.Error()})
				continue
			}
		}
		cb(fr)
	}
}

func (ws *watcherSet) unregister(id int) error {
	ws.mu.Lock()
	w, ok := ws.active[id]
	if ok {
		delete(ws.active, id)
	}
	ws.mu.Unlock()
	if !ok {
		return status.New(status.NotInitialized, nil)
	}
	close(w.cancel)
	<-w.done
	return nil
}

// closeAll cancels every active watcher and waits for them to exit.
func (ws *watcherSet) closeAll() {
	ws.mu.Lock()
	for id, w := range ws.active {
		close(w.cancel)
		delete(ws.active, id)
	}
	ws.mu.Unlock()

	_ = ws.group.Wait()
	if ws.pool != nil {
		ws.pool.Release()
	}
}

// notifyAll is a no-op: watchers poll independently rather than being
// woken by the writer (spec §5 explicitly drops cross-process condition
// variables). The call site stays in WriteFrameTimeout so watcher wakeup
// is one method away from the publish path it is conceptually tied to.
func (ws *watcherSet) notifyAll() {}
