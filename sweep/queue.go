package sweep

import (
	"fmt"

	conq "github.com/enriquebris/goconcurrentqueue"
	"go.uber.org/zap"
)

type point struct {
	index      int
	parameters []float64
}

type fifo interface {
	Enqueue(*point) error
	Dequeue() (*point, error)
	GetLen() int
}

type conqFIFO struct {
	fifo *conq.FIFO
}

func newConqFIFO() *conqFIFO {
	return &conqFIFO{
		fifo: conq.NewFIFO(),
	}
}

func (c *conqFIFO) Enqueue(p *point) error {
	return c.fifo.Enqueue(p)
}

func (c *conqFIFO) Dequeue() (*point, error) {
	tmp, err := c.fifo.Dequeue()
	if err != nil {
		return nil, err
	}
	return tmp.(*point), nil
}

func (c *conqFIFO) GetLen() int {
	return c.fifo.GetLen()
}

// pointQueue holds the parameter vectors of one sweep. Points are enqueued
// up front, so an empty queue means the sweep is drained.
type pointQueue struct {
	fifo    fifo
	maxSize int
}

func newPointQueue(maxSize int) *pointQueue {
	return &pointQueue{
		fifo:    newConqFIFO(),
		maxSize: maxSize,
	}
}

func (q *pointQueue) Put(index int, parameters []float64) error {
	if q.maxSize > 0 && q.maxSize <= q.fifo.GetLen() {
		return fmt.Errorf("failed to put point %d, the queue is full (%d)", index, q.maxSize)
	}
	params := make([]float64, len(parameters))
	copy(params, parameters)
	if err := q.fifo.Enqueue(&point{index: index, parameters: params}); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to put point %d. Reason:%s", index, err))
		return err
	}
	return nil
}

// Next returns false once the queue is drained.
func (q *pointQueue) Next() (*point, bool) {
	p, err := q.fifo.Dequeue()
	if err != nil {
		zap.L().Debug("no point in the sweep queue", zap.Error(err))
		return nil, false
	}
	return p, true
}

func (q *pointQueue) Len() int {
	return q.fifo.GetLen()
}
