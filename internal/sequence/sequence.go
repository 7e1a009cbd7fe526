// Package sequence hands out invoice numbers.
//
// A Generator is an explicit object passed to whoever creates invoices, so
// several sessions in one process (or several processes sharing a file or
// database) never reuse a number. Numbers start at 1 and only grow.
package sequence

import (
	"context"
	"strconv"
	"sync"
)

// First is the first number issued by a fresh sequence
const First int64 = 1

// Generator issues monotonically increasing invoice numbers
type Generator interface {
	// Next reserves and returns the next number
	Next(ctx context.Context) (int64, error)
	// Peek returns the number Next would return, without reserving it
	Peek(ctx context.Context) (int64, error)
}

// Format renders a sequence number as invoice number text
func Format(n int64) string {
	return strconv.FormatInt(n, 10)
}

// Memory is an in-process sequence
type Memory struct {
	mu   sync.Mutex
	last int64
}

// NewMemory creates a sequence whose first number is First
func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryFrom creates a sequence that continues after last
func NewMemoryFrom(last int64) *Memory {
	if last < 0 {
		last = 0
	}
	return &Memory{last: last}
}

// Next reserves and returns the next number
func (m *Memory) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last++
	return m.last, nil
}

// Peek returns the number Next would return
func (m *Memory) Peek(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last + 1, nil
}
