package domain

// Table is a mongo collection name
type Table string

const (
	TableAuctions         Table = "auctions"
	TableBids             Table = "auction_bids"
	TableProxyCommitments Table = "auction_proxies"
)

type SortDir int8

const (
	SortDirAsc  SortDir = 1
	SortDirDesc SortDir = -1
)

// UserId identifies a seller, bidder or viewer. Identity itself is owned by
// the account service.
type UserId string

func (u UserId) String() string {
	return string(u)
}

func (u UserId) IsEmpty() bool {
	return len(u) == 0
}
