package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/intradocs/intradocs/internal/core/domain"
	"github.com/intradocs/intradocs/internal/core/ports"
)

// Cache TTLs by volatility. Invalidation is explicit; TTLs only bound
// staleness when an eviction is missed.
const (
	ttlHierarchy  = time.Hour
	ttlStats      = 10 * time.Minute
	ttlRecentDocs = 5 * time.Minute
)

// Cache keys. Listing keys hold one level of the tree; stats keys hold
// derived aggregates for a branch.
const (
	keyTypes      = "hier:types"
	keyRecentDocs = "docs:recent"
	keyStats      = "stats:general"
)

func keyType(typeID string) string {
	return fmt.Sprintf("hier:type:%s", typeID)
}

func keyGeneralsOfType(typeID string) string {
	return fmt.Sprintf("hier:type:%s:generals", typeID)
}

func keyGeneral(generalID string) string {
	return fmt.Sprintf("hier:general:%s", generalID)
}

func keyInternalsOfGeneral(generalID string) string {
	return fmt.Sprintf("hier:general:%s:internals", generalID)
}

func keyInternal(internalID string) string {
	return fmt.Sprintf("hier:internal:%s", internalID)
}

func keyGeneralStats(generalID string) string {
	return fmt.Sprintf("stats:general:%s", generalID)
}

// typeKeys covers a ProcessType mutation: its own entry plus the root listing.
func typeKeys(typeID string) []string {
	return []string{keyTypes, keyType(typeID)}
}

// generalKeys covers a GeneralProcess mutation: its own entries, its parent's
// child listing, and its derived stats.
func generalKeys(typeID, generalID string) []string {
	return []string{
		keyGeneral(generalID),
		keyInternalsOfGeneral(generalID),
		keyGeneralStats(generalID),
		keyGeneralsOfType(typeID),
		keyType(typeID),
		keyStats,
	}
}

// internalKeys covers an InternalProcess mutation: its own entry, its parent's
// listing and the parent's aggregate stats.
func internalKeys(generalID, internalID string) []string {
	return []string{
		keyInternal(internalID),
		keyInternalsOfGeneral(generalID),
		keyGeneral(generalID),
		keyGeneralStats(generalID),
		keyStats,
	}
}

// documentKeys covers a Document mutation: the whole classification branch the
// document sits on, plus the recent-documents listing.
func documentKeys(doc *domain.Document) []string {
	keys := []string{keyRecentDocs, keyStats}
	keys = append(keys, keyGeneralStats(doc.GeneralID))
	keys = append(keys, keyInternal(doc.InternalID))
	keys = append(keys, keyInternalsOfGeneral(doc.GeneralID))
	keys = append(keys, keyGeneral(doc.GeneralID))
	keys = append(keys, keyGeneralsOfType(doc.TypeID))
	keys = append(keys, keyType(doc.TypeID))
	return keys
}

// evict drops cache entries best-effort. Failures are logged, never
// propagated: a stale entry expires by TTL at worst.
func evict(ctx context.Context, cache ports.Cache, log *slog.Logger, keys ...string) {
	for _, key := range keys {
		if err := cache.Forget(ctx, key); err != nil {
			log.Warn("cache_evict_failed", "key", key, "error", err)
		}
	}
}
