package workspace

import (
	"context"
	"fmt"
)

// Strategy selects how the next sequence ordinal is derived.
type Strategy string

const (
	// StrategyCount paginates the projects database and counts entries.
	StrategyCount Strategy = "count"
	// StrategyRollup reads a precomputed numeric rollup off the record.
	StrategyRollup Strategy = "rollup"
)

// Sequencer derives the zero-padded sequence prefix for new projects.
type Sequencer struct {
	client         *Client
	strategy       Strategy
	databaseID     string
	rollupProperty string
}

// NewSequencer creates a sequencer. databaseID is required for the count
// strategy, rollupProperty for the rollup strategy.
func NewSequencer(client *Client, strategy Strategy, databaseID, rollupProperty string) *Sequencer {
	return &Sequencer{
		client:         client,
		strategy:       strategy,
		databaseID:     databaseID,
		rollupProperty: rollupProperty,
	}
}

// Prefix computes the sequence prefix for the given record. With the rollup
// strategy an absent rollup yields an empty prefix, not an error.
func (s *Sequencer) Prefix(ctx context.Context, pageID string) (string, error) {
	switch s.strategy {
	case StrategyRollup:
		n, ok, err := s.client.GetSequenceRollup(ctx, pageID, s.rollupProperty)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", nil
		}
		return FormatPrefix(n), nil
	default:
		total, err := s.client.QueryDatabaseCount(ctx, s.databaseID)
		if err != nil {
			return "", err
		}
		return FormatPrefix(total), nil
	}
}

// FormatPrefix renders an ordinal as a 3-digit zero-padded prefix.
// Ordinals of 1000 and above render wider, which is intentional.
func FormatPrefix(n int) string {
	return fmt.Sprintf("%03d_", n)
}
