package nft

import (
	"github.com/MixinNetwork/mixin/crypto"
)

const (
	EventCreated     = "Created"
	EventTransferred = "Transferred"
	EventPriceSet    = "PriceSet"
	EventSold        = "Sold"
)

// Event is the notification of a successful call. Only the fields of its
// kind are set: Created{Owner, Id}, Transferred{From, To, Id},
// PriceSet{Owner, Id, Price}, Sold{Buyer, Id, Price}.
type Event struct {
	Kind  string
	Owner string `msgpack:",omitempty"`
	From  string `msgpack:",omitempty"`
	To    string `msgpack:",omitempty"`
	Buyer string `msgpack:",omitempty"`
	Id    crypto.Hash
	Price *uint64 `msgpack:",omitempty"`
}
