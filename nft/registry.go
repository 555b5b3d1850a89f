package nft

import (
	"fmt"

	"github.com/MixinNetwork/mixin/crypto"
)

const (
	CallCreateKitty = "create_kitty"
	CallTransfer    = "transfer"
	CallSetPrice    = "set_price"
	CallBuyKitty    = "buy_kitty"
)

// Call is one inbound operation. The caller identity travels separately,
// already authenticated by the host.
type Call struct {
	Kind     string
	To       string `msgpack:",omitempty"`
	Id       crypto.Hash
	Price    *uint64 `msgpack:",omitempty"`
	MaxPrice uint64  `msgpack:",omitempty"`
}

type Option func(*Registry)

func WithIdGenerator(gen IdGenerator) Option {
	return func(r *Registry) {
		r.unique = gen
	}
}

// Registry applies calls to the asset store, the ownership index and the
// counter. Every operation checks everything first and writes last, so a
// rejected call has not touched txn.
type Registry struct {
	unique IdGenerator
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{unique: UniqueAssetId}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Dispatch(txn Txn, env *Env, caller string, call *Call) (*Event, error) {
	switch call.Kind {
	case CallCreateKitty:
		return r.Mint(txn, env, caller)
	case CallTransfer:
		return r.Transfer(txn, caller, call.To, call.Id)
	case CallSetPrice:
		return r.SetPrice(txn, caller, call.Id, call.Price)
	case CallBuyKitty:
		return r.Buy(txn, caller, call.Id, call.MaxPrice)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownCall, call.Kind)
}

func (r *Registry) Asset(txn Txn, id crypto.Hash) (*Asset, error) {
	a, err := txn.ReadAsset(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNoSuchAsset
	}
	return a, nil
}

func (r *Registry) Owned(txn Txn, owner string) ([]crypto.Hash, error) {
	owned, err := txn.ReadOwned(owner)
	if err != nil {
		return nil, err
	}
	return owned.Ids(), nil
}

func (r *Registry) Count(txn Txn) (uint32, error) {
	return txn.ReadCounter()
}

// Verify walks the whole registry and reports the first broken invariant.
func (r *Registry) Verify(txn Txn) error {
	assets, err := txn.ListAssets()
	if err != nil {
		return err
	}
	count, err := txn.ReadCounter()
	if err != nil {
		return err
	}
	if int(count) != len(assets) {
		return fmt.Errorf("counter %d but %d assets", count, len(assets))
	}

	owners, err := txn.ListOwners()
	if err != nil {
		return err
	}
	index := make(map[crypto.Hash]string)
	for _, owner := range owners {
		owned, err := txn.ReadOwned(owner)
		if err != nil {
			return err
		}
		if owned.Len() > MaxOwned {
			return fmt.Errorf("%s owns %d assets", owner, owned.Len())
		}
		for _, id := range owned.Ids() {
			if other, found := index[id]; found {
				return fmt.Errorf("asset %s indexed for %s and %s", id, other, owner)
			}
			index[id] = owner
		}
	}

	for _, a := range assets {
		owner, found := index[a.Id]
		if !found || owner != a.Owner {
			return fmt.Errorf("asset %s owned by %s indexed for %q", a.Id, a.Owner, owner)
		}
		delete(index, a.Id)
	}
	if len(index) > 0 {
		return fmt.Errorf("%d dangling assets in the owned index", len(index))
	}
	return nil
}
