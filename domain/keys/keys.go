package keys

import (
	"strings"
)

const (
	// PfxAuctionLock prefixes the per-auction lease held while mutating it
	PfxAuctionLock = "auctionLock"
	// PfxPresence prefixes the sorted set of live viewers of an auction
	PfxPresence = "presence"
	// PfxAuctionChannel prefixes the pub/sub channel of an auction's events
	PfxAuctionChannel = "auctionEvents"
)

// CustomKey is used to join the customized key by componets with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by componets
func RedisKey(components ...string) string {
	return CustomKey(":", components...)
}

// RedisLuaKey is used to join the redis key by componets for redis lua
// If a key created by RedisLuaKey prefix to a set of keys
// then the set of keys will be forced in the same shard for doing lua
func RedisLuaKey(components ...string) string {
	return "{" + CustomKey(":", components...) + "}"
}

// AuctionLock is the lease key serializing writers of one auction
func AuctionLock(auctionId string) string {
	return RedisKey(PfxAuctionLock, auctionId)
}

// Presence is the sorted set of viewer ids scored by last seen time
func Presence(auctionId string) string {
	return RedisKey(PfxPresence, auctionId)
}

// AuctionChannel is the pub/sub channel live viewers of an auction listen on
func AuctionChannel(auctionId string) string {
	return RedisKey(PfxAuctionChannel, auctionId)
}

// GetPrefix extracts the prefix of a key for metric tags.
// `a:b:c` gives `a:b`, `a:b` gives `a`.
func GetPrefix(key string) string {
	s := strings.Split(strings.Trim(key, "{}"), ":")
	if len(s) > 2 {
		return strings.Join([]string{s[0], s[1]}, ":")
	} else if len(s) > 1 {
		return s[0]
	}
	return ""
}
