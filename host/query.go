package host

import (
	"github.com/MixinNetwork/collectables/nft"
	"github.com/MixinNetwork/mixin/crypto"
)

func (h *Host) Receipt(id string) (*Action, error) {
	return h.store.ReadAction(id)
}

func (h *Host) Asset(id crypto.Hash) (*nft.Asset, error) {
	var a *nft.Asset
	err := h.store.View(func(txn nft.Txn) error {
		var err error
		a, err = h.registry.Asset(txn, id)
		return err
	})
	return a, err
}

func (h *Host) Owned(owner string) ([]crypto.Hash, error) {
	var ids []crypto.Hash
	err := h.store.View(func(txn nft.Txn) error {
		var err error
		ids, err = h.registry.Owned(txn, owner)
		return err
	})
	return ids, err
}

func (h *Host) Count() (uint32, error) {
	var n uint32
	err := h.store.View(func(txn nft.Txn) error {
		var err error
		n, err = h.registry.Count(txn)
		return err
	})
	return n, err
}

func (h *Host) Verify() error {
	return h.store.View(func(txn nft.Txn) error {
		return h.registry.Verify(txn)
	})
}
