// Package relay carries change hints for committed mutations.
//
// A hint tells subscribers that a row changed, never what to do about it. Readers
// re-fetch authoritative state; delivery is at-least-once and unordered across rows.
package relay

import (
	"encoding/json"
	"fmt"
	"marketplace/config"
	"marketplace/shared/constant"
	"time"
)

const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
)

const topicSuffix = "changes"

type ChangeEvent struct {
	Table      string          `json:"table"`
	ID         string          `json:"id"`
	Op         string          `json:"op"`
	Row        json.RawMessage `json:"row,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Topic is the Kafka topic every instance publishes to and consumes from.
func Topic(cfg *config.Config) string {
	prefix := cfg.Kafka.TopicPrefix
	if prefix == constant.Empty {
		return topicSuffix
	}

	return fmt.Sprintf("%s.%s", prefix, topicSuffix)
}

// cachePrefixes maps a table to the read-cache namespace it feeds.
var cachePrefixes = map[string]string{
	"bookings":     constant.CacheKeyBooking,
	"auctions":     constant.CacheKeyAuction,
	"auction_bids": constant.CacheKeyAuction,
}

// cacheTarget returns the prefix and entity id to invalidate for event.
// Bid changes only touch auction lists, the bid id is not an auction key.
func cacheTarget(event ChangeEvent) (prefix, id string, ok bool) {
	prefix, ok = cachePrefixes[event.Table]
	if !ok {
		return "", "", false
	}

	if event.Table == "auction_bids" {
		return prefix, constant.Empty, true
	}

	return prefix, event.ID, true
}
