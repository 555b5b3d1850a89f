package nft

import (
	"fmt"

	"github.com/MixinNetwork/mixin/crypto"
)

const MaxOwned = 100

// Owned is the fixed capacity, insertion ordered list of assets held by one
// account. It never grows past MaxOwned.
type Owned struct {
	ids []crypto.Hash
}

func NewOwned(ids []crypto.Hash) (*Owned, error) {
	if len(ids) > MaxOwned {
		return nil, fmt.Errorf("owned list of %d exceeds %d", len(ids), MaxOwned)
	}
	o := &Owned{ids: make([]crypto.Hash, len(ids), MaxOwned)}
	copy(o.ids, ids)
	return o, nil
}

func (o *Owned) Len() int {
	return len(o.ids)
}

func (o *Owned) Full() bool {
	return len(o.ids) >= MaxOwned
}

func (o *Owned) Ids() []crypto.Hash {
	ids := make([]crypto.Hash, len(o.ids))
	copy(ids, o.ids)
	return ids
}

func (o *Owned) Contains(id crypto.Hash) bool {
	return o.index(id) >= 0
}

func (o *Owned) Push(id crypto.Hash) error {
	if o.Full() {
		return ErrTooManyOwned
	}
	o.ids = append(o.ids, id)
	return nil
}

// Remove drops id and keeps the order of the rest.
func (o *Owned) Remove(id crypto.Hash) bool {
	i := o.index(id)
	if i < 0 {
		return false
	}
	o.ids = append(o.ids[:i], o.ids[i+1:]...)
	return true
}

func (o *Owned) index(id crypto.Hash) int {
	for i, h := range o.ids {
		if h == id {
			return i
		}
	}
	return -1
}
