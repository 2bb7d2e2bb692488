package api

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/hoshinonyaruko/tetris-in-im/sqlite"
	"github.com/hoshinonyaruko/tetris-in-im/structs"
	"github.com/hoshinonyaruko/tetris-in-im/tetris"
)

var ErrSessionNotFound = errors.New("session not found")

// 轮询接口最多保留的未读事件数
const maxPendingEvents = 256

// Update 是推送给订阅者的一帧：最新状态和这一帧产生的事件。
type Update struct {
	State  structs.Snapshot `json:"state"`
	Events []structs.Event  `json:"events"`
}

// Game 是 Hub 中的一局游戏。Session 只由自己的 runner 推进，其它调用方通过 Submit 排队指令。
type Game struct {
	ID string

	mu          sync.Mutex
	session     *tetris.Session
	pending     []structs.Event
	lastSeen    time.Time
	archived    bool
	closed      bool
	subscribers map[chan Update]struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

// Submit 把指令放入会话队列，在下一次 tick 时生效。
func (g *Game) Submit(cmds ...structs.Command) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, cmd := range cmds {
		g.session.Submit(cmd)
	}
	g.lastSeen = time.Now()
}

// Snapshot 返回当前状态。
func (g *Game) Snapshot() structs.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastSeen = time.Now()
	return g.session.Snapshot()
}

// TakeEvents 取出自上次轮询以来的事件。
func (g *Game) TakeEvents() []structs.Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	events := g.pending
	g.pending = nil
	if events == nil {
		events = []structs.Event{}
	}
	return events
}

// Subscribe 订阅状态推送；返回的函数用于取消订阅。游戏关闭时通道会被关闭。
func (g *Game) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 16)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		close(ch)
		return ch, func() {}
	}
	g.subscribers[ch] = struct{}{}
	return ch, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if _, ok := g.subscribers[ch]; ok {
			delete(g.subscribers, ch)
			close(ch)
		}
	}
}

// step 推进会话并广播变化，finished 表示本次刚刚进入结束阶段。
func (g *Game) step(elapsed time.Duration) (snap structs.Snapshot, finished bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	before := g.session.Revision()
	g.session.Update(elapsed)
	events := g.session.Events()
	snap = g.session.Snapshot()

	g.pending = append(g.pending, events...)
	if over := len(g.pending) - maxPendingEvents; over > 0 {
		g.pending = g.pending[over:]
	}

	if snap.Phase.Terminal() {
		finished = !g.archived
		g.archived = true
	} else {
		g.archived = false
	}

	if g.session.Revision() != before {
		update := Update{State: snap, Events: events}
		for ch := range g.subscribers {
			select {
			case ch <- update:
			default:
				// 订阅者太慢，丢弃这一帧
			}
		}
	}
	return snap, finished
}

func (g *Game) idle(now time.Time) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return now.Sub(g.lastSeen)
}

func (g *Game) close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	for ch := range g.subscribers {
		close(ch)
	}
	g.subscribers = map[chan Update]struct{}{}
}

type HubOption func(*Hub)

// WithSessionFactory 替换新会话的创建方式。
func WithSessionFactory(factory func() *tetris.Session) HubOption {
	return func(h *Hub) {
		h.newSession = factory
	}
}

// Hub 按会话 ID 管理所有进行中的游戏，每局游戏有一个独立的 tick runner。
type Hub struct {
	db         *sql.DB
	tick       time.Duration
	ttl        time.Duration
	newSession func() *tetris.Session

	mu    sync.Mutex
	games map[string]*Game
}

// NewHub 创建 Hub。db 为 nil 时不保存战绩，ttl 为 0 时会话永不过期。
func NewHub(db *sql.DB, tick, ttl time.Duration, opts ...HubOption) *Hub {
	h := &Hub{
		db:   db,
		tick: tick,
		ttl:  ttl,
		newSession: func() *tetris.Session {
			return tetris.NewSession()
		},
		games: make(map[string]*Game),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Get 获取或创建一局游戏。
func (h *Hub) Get(id string) *Game {
	h.mu.Lock()
	defer h.mu.Unlock()

	if g, ok := h.games[id]; ok {
		return g
	}

	ctx, cancel := context.WithCancel(context.Background())
	g := &Game{
		ID:          id,
		session:     h.newSession(),
		lastSeen:    time.Now(),
		subscribers: make(map[chan Update]struct{}),
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	h.games[id] = g
	go h.run(ctx, g)
	log.Printf("session %s created", id)
	return g
}

// Lookup 只查找，不创建。
func (h *Hub) Lookup(id string) (*Game, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	g, ok := h.games[id]
	return g, ok
}

// Delete 停止并移除一局游戏。
func (h *Hub) Delete(id string) error {
	h.mu.Lock()
	g, ok := h.games[id]
	delete(h.games, id)
	h.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	g.cancel()
	<-g.done
	log.Printf("session %s deleted", id)
	return nil
}

// Close 停止所有游戏。
func (h *Hub) Close() {
	h.mu.Lock()
	games := h.games
	h.games = make(map[string]*Game)
	h.mu.Unlock()

	for _, g := range games {
		g.cancel()
		<-g.done
	}
}

func (h *Hub) run(ctx context.Context, g *Game) {
	defer close(g.done)
	defer g.close()

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if h.ttl > 0 && g.idle(now) > h.ttl {
				h.expire(g)
				return
			}

			elapsed := now.Sub(last)
			last = now
			snap, finished := g.step(elapsed)
			if finished {
				h.archive(g.ID, snap)
			}
		}
	}
}

func (h *Hub) expire(g *Game) {
	h.mu.Lock()
	if h.games[g.ID] == g {
		delete(h.games, g.ID)
	}
	h.mu.Unlock()
	log.Printf("session %s expired", g.ID)
}

func (h *Hub) archive(id string, snap structs.Snapshot) {
	if h.db == nil {
		return
	}
	result := structs.Result{
		SessionID:  id,
		Score:      snap.Score,
		Level:      snap.Level,
		Lines:      snap.Lines,
		Outcome:    snap.Phase,
		FinishedAt: time.Now().Unix(),
	}
	if err := sqlite.InsertResult(h.db, &result); err != nil {
		log.Printf("archive session %s: %v", id, err)
		return
	}
	log.Printf("session %s finished: %s score=%d level=%d", id, snap.Phase, snap.Score, snap.Level)
}
