package services

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Stage int

const (
	StageReceived Stage = iota
	StagePreparing
	StageDispatched
	StageDelivered
)

var stageTitles = map[Stage]string{
	StageReceived:   "Summoning the Owl Post",
	StagePreparing:  "Brewing Your Potions",
	StageDispatched: "Dispatched via Knight Bus",
	StageDelivered:  "Mischief Managed & Delivered!",
}

var stageNames = map[Stage]string{
	StageReceived:   "received",
	StagePreparing:  "preparing",
	StageDispatched: "dispatched",
	StageDelivered:  "delivered",
}

// stageDurations is how long each non-terminal stage lasts.
var stageDurations = map[Stage]time.Duration{
	StageReceived:   3 * time.Second,
	StagePreparing:  6 * time.Second,
	StageDispatched: 8 * time.Second,
}

func (s Stage) String() string { return stageNames[s] }

func (s Stage) Title() string { return stageTitles[s] }

func (s Stage) Terminal() bool { return s == StageDelivered }

// Next is the transition function: every stage advances to the one
// after it and Delivered has no successor.
func (s Stage) Next() (Stage, bool) {
	if s < StageReceived || s >= StageDelivered {
		return s, false
	}
	return s + 1, true
}

// Duration is how long s lasts before advancing; zero for Delivered.
func (s Stage) Duration() time.Duration { return stageDurations[s] }

// StageUpdate is pushed to watchers on every transition.
type StageUpdate struct {
	OrderID string `json:"orderId"`
	Queue   int    `json:"queueNumber"`
	Stage   string `json:"stage"`
	Step    int    `json:"step"`
	Title   string `json:"title"`
	Final   bool   `json:"final"`
}

func newStageUpdate(id string, queue int, s Stage) StageUpdate {
	return StageUpdate{OrderID: id, Queue: queue, Stage: s.String(), Step: int(s) + 1, Title: s.Title(), Final: s.Terminal()}
}

type tracking struct {
	queue    int
	stage    Stage
	timer    Timer
	watchers map[int]chan StageUpdate
}

// Tracker drives the post-order status display for each order. It never
// touches the order record; closing a watcher or the whole tracking has
// no effect on the order.
type Tracker struct {
	clock Clock
	log   *zap.Logger

	mu     sync.Mutex
	orders map[string]*tracking
	nextID int
}

func NewTracker(clock Clock, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{clock: clock, log: logger.Named("tracker"), orders: make(map[string]*tracking)}
}

// Start begins tracking an order at Received. Starting an order already
// tracked is a no-op.
func (t *Tracker) Start(orderID string, queue int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.orders[orderID]; ok {
		return
	}
	tr := &tracking{queue: queue, stage: StageReceived, watchers: make(map[int]chan StageUpdate)}
	t.orders[orderID] = tr
	t.scheduleLocked(orderID, tr)
}

// trackingRetention is how long a delivered order stays queryable.
const trackingRetention = 10 * time.Minute

func (t *Tracker) scheduleLocked(orderID string, tr *tracking) {
	if tr.stage.Terminal() {
		tr.timer = t.clock.AfterFunc(trackingRetention, func() { t.expire(orderID, tr) })
		return
	}
	tr.timer = t.clock.AfterFunc(tr.stage.Duration(), func() { t.advance(orderID, tr) })
}

func (t *Tracker) advance(orderID string, tr *tracking) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.orders[orderID] != tr {
		// closed while the timer was in flight
		return
	}
	next, ok := tr.stage.Next()
	if !ok {
		return
	}
	tr.stage = next
	u := newStageUpdate(orderID, tr.queue, next)
	for _, ch := range tr.watchers {
		select {
		case ch <- u:
		default:
			t.log.Debug("watcher lagging, update dropped", zap.String("order", orderID))
		}
	}
	t.log.Debug("stage advanced", zap.String("order", orderID), zap.String("stage", next.String()))
	t.scheduleLocked(orderID, tr)
}

func (t *Tracker) expire(orderID string, tr *tracking) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.orders[orderID] == tr {
		delete(t.orders, orderID)
	}
}

// Status reports the order's current stage.
func (t *Tracker) Status(orderID string) (StageUpdate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tr, ok := t.orders[orderID]
	if !ok {
		return StageUpdate{}, false
	}
	return newStageUpdate(orderID, tr.queue, tr.stage), true
}

// Watch subscribes to stage updates. The returned channel first carries
// the current stage. Call cancel to unsubscribe.
func (t *Tracker) Watch(orderID string) (updates <-chan StageUpdate, cancel func(), ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tr, found := t.orders[orderID]
	if !found {
		return nil, func() {}, false
	}
	ch := make(chan StageUpdate, int(StageDelivered)+1)
	ch <- newStageUpdate(orderID, tr.queue, tr.stage)
	id := t.nextID
	t.nextID++
	tr.watchers[id] = ch
	var once sync.Once
	cancel = func() {
		once.Do(func() {
			t.mu.Lock()
			delete(tr.watchers, id)
			t.mu.Unlock()
		})
	}
	return ch, cancel, true
}

// Close stops tracking the order and drops its pending timer.
func (t *Tracker) Close(orderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tr, ok := t.orders[orderID]
	if !ok {
		return
	}
	if tr.timer != nil {
		tr.timer.Stop()
	}
	delete(t.orders, orderID)
}
