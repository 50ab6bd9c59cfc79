package events

import "sync"

type message struct {
	Kind string
	Data []byte
}

// queue is an unbounded FIFO guarded by a mutex. It decouples the mutating
// caller from however long the writer takes to ship an event.
type queue struct {
	lock     sync.Mutex
	messages []*message
}

func newQueue() *queue {
	return &queue{}
}

func (q *queue) PushBack(msg *message) {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.messages = append(q.messages, msg)
}

func (q *queue) Pop() *message {
	q.lock.Lock()
	defer q.lock.Unlock()

	if len(q.messages) == 0 {
		return nil
	}
	msg := q.messages[0]
	q.messages = q.messages[1:]
	return msg
}

func (q *queue) Size() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return len(q.messages)
}
