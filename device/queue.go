package device

import (
	"github.com/sarchlab/ethersim/frame"
	"github.com/sarchlab/ethersim/wiring"
)

type headerState uint8

const (
	headerParsing headerState = iota
	headerKnown
	headerAbandoned
)

// frameHeader is what a switch port has parsed of the frame a buffered bit
// belongs to.
type frameHeader struct {
	state headerState
	dst   frame.MAC
}

type bufferedBit struct {
	signal wiring.Signal
	header *frameHeader
}

// bitQueue is a growable ring buffer of bits waiting to leave a switch port.
type bitQueue struct {
	buf   []bufferedBit
	head  int
	count int
}

func (q *bitQueue) Len() int {
	return q.count
}

func (q *bitQueue) Push(b bufferedBit) {
	if q.count == len(q.buf) {
		q.grow()
	}

	q.buf[(q.head+q.count)%len(q.buf)] = b
	q.count++
}

func (q *bitQueue) Peek() bufferedBit {
	if q.count == 0 {
		panic("peek on empty bit queue")
	}

	return q.buf[q.head]
}

func (q *bitQueue) Pop() bufferedBit {
	b := q.Peek()

	q.buf[q.head] = bufferedBit{}
	q.head = (q.head + 1) % len(q.buf)
	q.count--

	return b
}

func (q *bitQueue) Clear() {
	for q.count > 0 {
		q.Pop()
	}

	q.head = 0
}

func (q *bitQueue) grow() {
	size := 2 * len(q.buf)
	if size == 0 {
		size = 64
	}

	buf := make([]bufferedBit, size)
	for i := 0; i < q.count; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}

	q.buf = buf
	q.head = 0
}
