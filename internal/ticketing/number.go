package ticketing

import (
	"context"
	"fmt"
)

// NumberPrefix precedes every ticket number.
const NumberPrefix = "TKT-"

// FormatNumber renders a sequence value as a ticket number, e.g. TKT-00042.
func FormatNumber(seq int64) string {
	return fmt.Sprintf("%s%05d", NumberPrefix, seq)
}

// NumberAllocator hands out the ticket number for a ticket being created.
type NumberAllocator interface {
	Next(ctx context.Context) (string, error)
}

// TicketCounter reports how many tickets exist.
type TicketCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Sequence atomically increments and returns a named counter.
type Sequence interface {
	NextValue(ctx context.Context, name string) (int64, error)
}

// CountAllocator numbers tickets as count+1. Two creations that read the
// same count get the same number; it is only unique when creation is
// serialized.
type CountAllocator struct {
	counter TicketCounter
}

// NewCountAllocator builds a count based allocator.
func NewCountAllocator(counter TicketCounter) *CountAllocator {
	return &CountAllocator{counter: counter}
}

func (a *CountAllocator) Next(ctx context.Context) (string, error) {
	count, err := a.counter.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("count tickets: %w", err)
	}
	return FormatNumber(count + 1), nil
}

// TicketSequenceName is the counter row used for ticket numbers.
const TicketSequenceName = "ticket_number"

// SequenceAllocator numbers tickets from an atomic store-backed counter, so
// concurrent creations never share a number.
type SequenceAllocator struct {
	seq Sequence
}

// NewSequenceAllocator builds a sequence based allocator.
func NewSequenceAllocator(seq Sequence) *SequenceAllocator {
	return &SequenceAllocator{seq: seq}
}

func (a *SequenceAllocator) Next(ctx context.Context) (string, error) {
	value, err := a.seq.NextValue(ctx, TicketSequenceName)
	if err != nil {
		return "", fmt.Errorf("next ticket sequence: %w", err)
	}
	return FormatNumber(value), nil
}
