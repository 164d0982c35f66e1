// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package surfacebridge

import (
	"sync"
)

// messageChunkSize is the number of messages per node in the MessageQueue
// linked list. Lifecycle traffic is sparse, so chunks are kept small.
const messageChunkSize = 32

// MessageQueue is an unbounded FIFO of messages, stored as a linked list of
// fixed-size chunks.
//
// Thread Safety: MessageQueue is NOT thread-safe. It has a single writer (the
// worker goroutine) and a single reader (the render loop, which runs on the
// same goroutine). Polling from any other goroutine requires external
// synchronization.
type MessageQueue struct {
	metrics *Metrics
	head    *messageChunk
	tail    *messageChunk
	length  int
}

type messageChunk struct {
	messages [messageChunkSize]*Message
	next     *messageChunk
	readPos  int // first unread slot
	pos      int // first unused slot
}

var messageChunkPool = sync.Pool{
	New: func() any {
		return &messageChunk{}
	},
}

func newMessageChunk() *messageChunk {
	c := messageChunkPool.Get().(*messageChunk)
	c.pos = 0
	c.readPos = 0
	c.next = nil
	return c
}

// returnMessageChunk clears any retained messages (and with them, borrowed
// surface handles) before returning c to the pool.
func returnMessageChunk(c *messageChunk) {
	clear(c.messages[:c.pos])
	c.pos = 0
	c.readPos = 0
	c.next = nil
	messageChunkPool.Put(c)
}

// NewMessageQueue constructs an empty MessageQueue.
func NewMessageQueue() *MessageQueue {
	return &MessageQueue{}
}

// Push appends message to the tail of the queue. It returns
// ErrInvalidArgument if message is nil.
func (q *MessageQueue) Push(message *Message) error {
	if message == nil {
		return ErrInvalidArgument
	}

	if q.tail == nil {
		q.tail = newMessageChunk()
		q.head = q.tail
	}

	if q.tail.pos == len(q.tail.messages) {
		c := newMessageChunk()
		q.tail.next = c
		q.tail = c
	}

	q.tail.messages[q.tail.pos] = message
	q.tail.pos++
	q.length++

	q.metrics.messagePushed(message.kind)

	return nil
}

// PopFront removes and returns the oldest message. It returns false if the
// queue is empty, which is not an error. It never blocks.
func (q *MessageQueue) PopFront() (*Message, bool) {
	if q.length == 0 {
		return nil, false
	}

	if q.head.readPos >= q.head.pos {
		// exhausted, and length > 0 guarantees a next chunk
		old := q.head
		q.head = old.next
		returnMessageChunk(old)
	}

	message := q.head.messages[q.head.readPos]
	q.head.messages[q.head.readPos] = nil
	q.head.readPos++
	q.length--

	if q.head.readPos >= q.head.pos {
		if q.head == q.tail {
			// reuse the only chunk
			q.head.pos = 0
			q.head.readPos = 0
		} else {
			old := q.head
			q.head = old.next
			returnMessageChunk(old)
		}
	}

	q.metrics.messagePolled(message.kind)

	return message, true
}

// Len returns the number of messages in the queue.
func (q *MessageQueue) Len() int {
	return q.length
}

// Clear discards all messages, returning the number discarded.
func (q *MessageQueue) Clear() int {
	n := q.length
	for c := q.head; c != nil; {
		next := c.next
		returnMessageChunk(c)
		c = next
	}
	q.head = nil
	q.tail = nil
	q.length = 0
	return n
}
