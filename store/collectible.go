package store

import (
	"encoding/binary"
	"fmt"

	"github.com/MixinNetwork/collectables/nft"
	"github.com/MixinNetwork/mixin/common"
	"github.com/MixinNetwork/mixin/crypto"
	"github.com/dgraph-io/badger/v3"
)

const (
	prefixCollectibleAsset = "COLLECTIBLES:ASSET:"
	prefixCollectibleOwned = "COLLECTIBLES:OWNED:"
	keyCollectibleCounter  = "COLLECTIBLES:COUNTER"
)

// Txn binds the registry and the ledger to one badger transaction.
type Txn struct {
	bs  *BadgerStore
	txn *badger.Txn
}

var _ nft.Txn = (*Txn)(nil)

func (t *Txn) ReadAsset(id crypto.Hash) (*nft.Asset, error) {
	key := append([]byte(prefixCollectibleAsset), id[:]...)
	val, err := t.get(key)
	if err != nil || val == nil {
		return nil, err
	}
	var a nft.Asset
	err = common.MsgpackUnmarshal(val, &a)
	return &a, err
}

func (t *Txn) WriteAsset(a *nft.Asset) error {
	key := append([]byte(prefixCollectibleAsset), a.Id[:]...)
	val := common.MsgpackMarshalPanic(a)
	return t.txn.Set(key, val)
}

func (t *Txn) ListAssets() ([]*nft.Asset, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixCollectibleAsset)
	it := t.txn.NewIterator(opts)
	defer it.Close()

	var assets []*nft.Asset
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		var a nft.Asset
		err = common.MsgpackUnmarshal(val, &a)
		if err != nil {
			return nil, err
		}
		assets = append(assets, &a)
	}
	return assets, nil
}

func (t *Txn) ReadOwned(owner string) (*nft.Owned, error) {
	val, err := t.get([]byte(prefixCollectibleOwned + owner))
	if err != nil {
		return nil, err
	} else if val == nil {
		return nft.NewOwned(nil)
	}
	var ids []crypto.Hash
	err = common.MsgpackUnmarshal(val, &ids)
	if err != nil {
		return nil, err
	}
	owned, err := nft.NewOwned(ids)
	if err != nil {
		return nil, fmt.Errorf("owned index of %s: %w", owner, err)
	}
	return owned, nil
}

func (t *Txn) WriteOwned(owner string, owned *nft.Owned) error {
	key := []byte(prefixCollectibleOwned + owner)
	val := common.MsgpackMarshalPanic(owned.Ids())
	return t.txn.Set(key, val)
}

func (t *Txn) ListOwners() ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefixCollectibleOwned)
	it := t.txn.NewIterator(opts)
	defer it.Close()

	var owners []string
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		key := it.Item().Key()
		owners = append(owners, string(key[len(opts.Prefix):]))
	}
	return owners, nil
}

func (t *Txn) ReadCounter() (uint32, error) {
	val, err := t.get([]byte(keyCollectibleCounter))
	if err != nil || val == nil {
		return 0, err
	}
	if len(val) != 4 {
		panic(val)
	}
	return binary.BigEndian.Uint32(val), nil
}

func (t *Txn) WriteCounter(n uint32) error {
	val := binary.BigEndian.AppendUint32(nil, n)
	return t.txn.Set([]byte(keyCollectibleCounter), val)
}

func (t *Txn) get(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
