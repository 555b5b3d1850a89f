package host

import (
	"github.com/MixinNetwork/collectables/nft"
)

type Store interface {
	nft.Store

	WriteProperty(key, val []byte) error
	ReadProperty(key []byte) ([]byte, error)

	Deposit(account string, amount uint64) error

	WriteAction(act *Action) error
	ReadAction(id string) (*Action, error)
	ListActions(state int, limit int) ([]*Action, error)
	ApplyAction(act *Action, round *Round, fn func(txn nft.Txn) (*nft.Event, error)) error

	ReadRound() (*Round, error)
	WriteRound(round *Round) error
}
