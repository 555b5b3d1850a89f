package nft

import (
	"github.com/MixinNetwork/mixin/crypto"
)

// Ledger is the fungible balance collaborator. Transfer must move exactly
// amount or fail without effect.
type Ledger interface {
	Transfer(from, to string, amount uint64) error
}

// Txn is a single all-or-nothing storage scope provided by the host. Writes
// become visible only if the host commits it.
type Txn interface {
	Ledger

	ReadAsset(id crypto.Hash) (*Asset, error)
	WriteAsset(a *Asset) error
	ListAssets() ([]*Asset, error)

	ReadOwned(owner string) (*Owned, error)
	WriteOwned(owner string, owned *Owned) error
	ListOwners() ([]string, error)

	ReadCounter() (uint32, error)
	WriteCounter(n uint32) error
}

type Store interface {
	Update(fn func(txn Txn) error) error
	View(fn func(txn Txn) error) error
}

// Asset is a collectible record. Price is nil unless the owner listed it.
type Asset struct {
	Id    crypto.Hash
	Owner string
	Price *uint64
}

func (a *Asset) Listed() bool {
	return a.Price != nil
}

// Env is the per call context supplied by the host, identical on every replica.
type Env struct {
	Parent crypto.Hash
	Height uint64
	Index  uint32
}
