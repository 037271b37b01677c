package sim

import (
	"sync"

	"ittycoon/internal/game"
)

const defaultQueueSize = 64

// Queue is a bounded FIFO of notifications. When full, the oldest entry is
// dropped to make room.
type Queue struct {
	mu    sync.Mutex
	items []game.Notification
	limit int
}

func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = defaultQueueSize
	}
	return &Queue{limit: limit}
}

func (q *Queue) Push(notes ...game.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, notes...)
	if over := len(q.items) - q.limit; over > 0 {
		q.items = append([]game.Notification(nil), q.items[over:]...)
	}
}

func (q *Queue) Pop() (game.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return game.Notification{}, false
	}
	n := q.items[0]
	q.items = q.items[1:]
	return n, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
