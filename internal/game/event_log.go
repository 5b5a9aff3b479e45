package game

import (
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	EventBufferSize     = 1024                   // Circular buffer size
	MaxEventsPerSec     = 5000                   // Global rate limit
	MaxEventsPerActor   = 50                     // Per-actor rate limit per second
	BatchFlushSize      = 64                     // Events per batch write
	BatchFlushInterval  = 250 * time.Millisecond // How often to flush
	ActorLimiterCleanup = 5 * time.Minute        // Cleanup interval for actor limiters
)

// EventLogOptions configures the on-disk JSONL output.
type EventLogOptions struct {
	Path       string // empty keeps events in memory only
	MaxSizeMB  int    // rotate after this many megabytes
	MaxBackups int    // rotated files to keep
	MaxAgeDays int
	Compress   bool
}

// EventLog is a bounded, rate-limited gameplay log. Emit never blocks the
// tick; a background writer drains the ring buffer to disk.
type EventLog struct {
	buffer    [EventBufferSize]Event
	writeHead uint64 // atomic
	readHead  uint64 // atomic

	globalLimiter *rate.Limiter
	actorLimiters sync.Map // map[string]*actorLimiterEntry

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	out   io.WriteCloser
	outMu sync.Mutex

	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

type actorLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed atomic.Int64 // unix nano
}

// NewEventLog creates a new bounded event log
func NewEventLog() *EventLog {
	return &EventLog{
		globalLimiter: rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// Start begins the async writer. Output rotates through lumberjack when a
// path is configured.
func (el *EventLog) Start(opts EventLogOptions) error {
	if el.running.Load() {
		return nil
	}
	if opts.Path != "" {
		el.out = &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
	}
	return el.StartWriter(el.out)
}

// StartWriter begins the async writer with an explicit sink. A nil sink
// keeps events in the ring buffer only.
func (el *EventLog) StartWriter(out io.WriteCloser) error {
	if el.running.Load() {
		return nil
	}
	el.outMu.Lock()
	el.out = out
	el.outMu.Unlock()

	el.running.Store(true)
	el.writerWg.Add(2)
	go el.writerLoop()
	go el.cleanupLoop()
	return nil
}

// Stop flushes pending events and closes the output.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()

		el.outMu.Lock()
		if el.out != nil {
			el.out.Close()
		}
		el.outMu.Unlock()
	})
}

// Emit adds an event. It returns false when the log is stopped or the event
// was rate limited.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}
	if !el.globalLimiter.Allow() {
		atomic.AddUint64(&el.droppedCount, 1)
		return false
	}
	if event.ActorID != "" && !el.actorLimiter(event.ActorID).Allow() {
		atomic.AddUint64(&el.droppedCount, 1)
		return false
	}

	head := atomic.AddUint64(&el.writeHead, 1)
	tail := atomic.LoadUint64(&el.readHead)
	if head-tail >= EventBufferSize {
		// Full: overwrite the oldest entry.
		atomic.AddUint64(&el.readHead, 1)
		atomic.AddUint64(&el.droppedCount, 1)
	}

	event.Sequence = head
	el.buffer[head%EventBufferSize] = event
	atomic.AddUint64(&el.totalCount, 1)
	return true
}

// EmitSimple builds and emits an event in one call.
func (el *EventLog) EmitSimple(eventType EventType, tickNum uint64, actorID string, payload interface{}) bool {
	if !el.running.Load() {
		return false
	}
	return el.Emit(NewEvent(eventType, tickNum, actorID, payload))
}

func (el *EventLog) actorLimiter(actorID string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := el.actorLimiters.Load(actorID); ok {
		e := v.(*actorLimiterEntry)
		e.lastUsed.Store(now)
		return e.limiter
	}
	entry := &actorLimiterEntry{limiter: rate.NewLimiter(MaxEventsPerActor, MaxEventsPerActor/5)}
	entry.lastUsed.Store(now)
	actual, _ := el.actorLimiters.LoadOrStore(actorID, entry)
	return actual.(*actorLimiterEntry).limiter
}

func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, BatchFlushSize)
	for {
		select {
		case <-el.stopChan:
			for {
				batch = el.collectBatch(batch[:0])
				if len(batch) == 0 {
					return
				}
				el.flushBatch(batch)
			}
		case <-ticker.C:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
		}
	}
}

func (el *EventLog) cleanupLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(ActorLimiterCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-ActorLimiterCleanup).UnixNano()
			el.actorLimiters.Range(func(key, value interface{}) bool {
				if value.(*actorLimiterEntry).lastUsed.Load() < cutoff {
					el.actorLimiters.Delete(key)
				}
				return true
			})
		}
	}
}

func (el *EventLog) collectBatch(batch []Event) []Event {
	head := atomic.LoadUint64(&el.writeHead)
	tail := atomic.LoadUint64(&el.readHead)

	for i := tail + 1; i <= head && len(batch) < BatchFlushSize; i++ {
		batch = append(batch, el.buffer[i%EventBufferSize])
	}
	if len(batch) > 0 {
		atomic.AddUint64(&el.readHead, uint64(len(batch)))
	}
	return batch
}

// flushBatch writes newline-delimited JSON.
func (el *EventLog) flushBatch(batch []Event) {
	el.outMu.Lock()
	defer el.outMu.Unlock()

	if el.out == nil {
		return
	}
	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		data = append(data, '\n')
		el.out.Write(data)
	}
}

// GetStats returns counters for monitoring
func (el *EventLog) GetStats() map[string]interface{} {
	head := atomic.LoadUint64(&el.writeHead)
	tail := atomic.LoadUint64(&el.readHead)

	return map[string]interface{}{
		"total":   atomic.LoadUint64(&el.totalCount),
		"dropped": atomic.LoadUint64(&el.droppedCount),
		"pending": head - tail,
		"running": el.running.Load(),
	}
}

// GetDroppedCount returns the number of dropped events
func (el *EventLog) GetDroppedCount() uint64 {
	return atomic.LoadUint64(&el.droppedCount)
}

// GetTotalCount returns the number of accepted events
func (el *EventLog) GetTotalCount() uint64 {
	return atomic.LoadUint64(&el.totalCount)
}
