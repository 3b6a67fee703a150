// Package idalloc assigns membership identifiers.
//
// An identifier is "{region-code}-{year}-{seq:04d}", e.g. "AMH-2025-0001".
// Sequence numbers are unique and strictly increasing per (region code, year);
// the guarantee comes from an atomic counter keyed by that pair, never from
// scanning existing rows at allocation time.
package idalloc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/meskelsoft/partyreg/internal/app/system/regioncode"
	"go.uber.org/zap"
)

// SequenceSource hands out the next sequence number for a (code, year) key.
// *sequencestore.Store is the production implementation.
type SequenceSource interface {
	Next(ctx context.Context, code string, year int) (int64, error)
}

// Allocator produces membership IDs.
type Allocator struct {
	seq SequenceSource
	log *zap.Logger
}

func New(seq SequenceSource, logger *zap.Logger) *Allocator {
	return &Allocator{seq: seq, log: logger}
}

// Allocate returns the next membership ID for the region and year.
//
// Unrecognized regions allocate under the "OTH" bucket rather than failing;
// registration must never be blocked by an unlisted region. The anomaly is
// logged so operators can extend the region table.
func (a *Allocator) Allocate(ctx context.Context, region string, year int) (string, error) {
	code := regioncode.Code(region)
	if code == regioncode.Fallback && region != "" && a.log != nil {
		a.log.Warn("region not in code table; allocating under fallback bucket",
			zap.String("region", region))
	}

	seq, err := a.seq.Next(ctx, code, year)
	if err != nil {
		return "", fmt.Errorf("allocate %s-%d: %w", code, year, err)
	}
	return Format(code, year, seq), nil
}

// Format renders an identifier. Sequences beyond 9999 widen past the 4-digit
// padding rather than failing.
func Format(code string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", code, year, seq)
}

// ParseSeq extracts the trailing sequence number from an issued identifier.
// Used only when seeding counters from historical data; allocation itself
// never parses.
func ParseSeq(membershipID string) (int64, error) {
	i := strings.LastIndex(membershipID, "-")
	if i < 0 || i == len(membershipID)-1 {
		return 0, fmt.Errorf("malformed membership id %q", membershipID)
	}
	seq, err := strconv.ParseInt(membershipID[i+1:], 10, 64)
	if err != nil || seq < 1 {
		return 0, fmt.Errorf("malformed membership id %q", membershipID)
	}
	return seq, nil
}
