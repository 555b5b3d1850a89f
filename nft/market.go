package nft

import (
	"github.com/MixinNetwork/mixin/crypto"
)

// SetPrice lists the asset for sale at price, or delists it when price is nil.
func (r *Registry) SetPrice(txn Txn, caller string, id crypto.Hash, price *uint64) (*Event, error) {
	a, err := r.Asset(txn, id)
	if err != nil {
		return nil, err
	}
	if a.Owner != caller {
		return nil, ErrNotOwner
	}

	if price != nil {
		p := *price
		price = &p
	}
	a.Price = price
	err = txn.WriteAsset(a)
	if err != nil {
		return nil, err
	}
	return &Event{Kind: EventPriceSet, Owner: caller, Id: id, Price: price}, nil
}

// Buy pays the listed price, never maxPrice, to the seller and takes the
// asset. The payment and the ownership change share the txn, so a failed
// payment leaves the asset untouched.
func (r *Registry) Buy(txn Txn, buyer string, id crypto.Hash, maxPrice uint64) (*Event, error) {
	a, err := r.Asset(txn, id)
	if err != nil {
		return nil, err
	}
	if !a.Listed() {
		return nil, ErrNotForSale
	}
	price := *a.Price
	if price > maxPrice {
		return nil, ErrMaxPriceTooLow
	}
	if buyer == a.Owner {
		return nil, ErrTransferToSelf
	}
	from, dest, err := readOwnedPair(txn, a, buyer)
	if err != nil {
		return nil, err
	}

	err = txn.Transfer(buyer, a.Owner, price)
	if err != nil {
		return nil, err
	}
	err = move(txn, a, buyer, from, dest)
	if err != nil {
		return nil, err
	}
	return &Event{Kind: EventSold, Buyer: buyer, Id: id, Price: &price}, nil
}
