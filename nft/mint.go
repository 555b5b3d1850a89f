package nft

import (
	"math"
)

// Mint creates a new unlisted asset owned by caller.
func (r *Registry) Mint(txn Txn, env *Env, caller string) (*Event, error) {
	count, err := txn.ReadCounter()
	if err != nil {
		return nil, err
	}
	id := r.unique(caller, env, count)

	old, err := txn.ReadAsset(id)
	if err != nil {
		return nil, err
	} else if old != nil {
		return nil, ErrDuplicateAsset
	}
	if count == math.MaxUint32 {
		return nil, ErrTooManyAssets
	}
	owned, err := txn.ReadOwned(caller)
	if err != nil {
		return nil, err
	}
	if owned.Full() {
		return nil, ErrTooManyOwned
	}

	err = owned.Push(id)
	if err != nil {
		panic(err)
	}
	err = txn.WriteAsset(&Asset{Id: id, Owner: caller})
	if err != nil {
		return nil, err
	}
	err = txn.WriteOwned(caller, owned)
	if err != nil {
		return nil, err
	}
	err = txn.WriteCounter(count + 1)
	if err != nil {
		return nil, err
	}
	return &Event{Kind: EventCreated, Owner: caller, Id: id}, nil
}
