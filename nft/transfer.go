package nft

import (
	"fmt"

	"github.com/MixinNetwork/mixin/crypto"
)

// Transfer gives an asset away. Any sale listing is dropped, the new owner
// never inherits the old asking price.
func (r *Registry) Transfer(txn Txn, caller, to string, id crypto.Hash) (*Event, error) {
	a, err := r.Asset(txn, id)
	if err != nil {
		return nil, err
	}
	if a.Owner != caller {
		return nil, ErrNotOwner
	}
	if to == caller {
		return nil, ErrTransferToSelf
	}
	from, dest, err := readOwnedPair(txn, a, to)
	if err != nil {
		return nil, err
	}

	err = move(txn, a, to, from, dest)
	if err != nil {
		return nil, err
	}
	return &Event{Kind: EventTransferred, From: caller, To: to, Id: id}, nil
}

// readOwnedPair loads both sides of an ownership change and checks the
// receiver has room and the sender list actually holds the asset.
func readOwnedPair(txn Txn, a *Asset, to string) (*Owned, *Owned, error) {
	dest, err := txn.ReadOwned(to)
	if err != nil {
		return nil, nil, err
	}
	if dest.Full() {
		return nil, nil, ErrTooManyOwned
	}
	from, err := txn.ReadOwned(a.Owner)
	if err != nil {
		return nil, nil, err
	}
	if !from.Contains(a.Id) {
		return nil, nil, fmt.Errorf("%w: %s missing from the index of %s", ErrNoSuchAsset, a.Id, a.Owner)
	}
	return from, dest, nil
}

// move is the commit half of Transfer and Buy, both lists are validated
// by readOwnedPair before.
func move(txn Txn, a *Asset, to string, from, dest *Owned) error {
	prev := a.Owner
	if !from.Remove(a.Id) {
		panic(a.Id)
	}
	if err := dest.Push(a.Id); err != nil {
		panic(err)
	}
	a.Owner = to
	a.Price = nil

	err := txn.WriteOwned(prev, from)
	if err != nil {
		return err
	}
	err = txn.WriteOwned(to, dest)
	if err != nil {
		return err
	}
	return txn.WriteAsset(a)
}
