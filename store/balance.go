package store

import (
	"encoding/binary"
	"fmt"

	"github.com/MixinNetwork/collectables/nft"
	"github.com/dgraph-io/badger/v3"
)

const prefixBalance = "BALANCE:"

// Transfer moves exactly amount from one account to another, keeping the
// payer at or above the minimum balance. Moving nothing always succeeds.
func (t *Txn) Transfer(from, to string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	fb, err := t.readBalance(from)
	if err != nil {
		return err
	}
	if fb < amount || fb-amount < t.bs.minimum {
		return fmt.Errorf("%w: %s has %d to pay %d", nft.ErrInsufficientBalance, from, fb, amount)
	}
	if from == to {
		return nil
	}
	tb, err := t.readBalance(to)
	if err != nil {
		return err
	}
	if tb+amount < tb {
		return fmt.Errorf("%w: %s has %d to receive %d", nft.ErrBalanceOverflow, to, tb, amount)
	}

	err = t.writeBalance(from, fb-amount)
	if err != nil {
		return err
	}
	return t.writeBalance(to, tb+amount)
}

func (t *Txn) ReadBalance(account string) (uint64, error) {
	return t.readBalance(account)
}

func (bs *BadgerStore) Deposit(account string, amount uint64) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		t := &Txn{bs: bs, txn: txn}
		b, err := t.readBalance(account)
		if err != nil {
			return err
		}
		if b+amount < b {
			return fmt.Errorf("%w: %s has %d to receive %d", nft.ErrBalanceOverflow, account, b, amount)
		}
		return t.writeBalance(account, b+amount)
	})
}

func (bs *BadgerStore) ReadBalance(account string) (uint64, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	t := &Txn{bs: bs, txn: txn}
	return t.readBalance(account)
}

func (t *Txn) readBalance(account string) (uint64, error) {
	val, err := t.get([]byte(prefixBalance + account))
	if err != nil || val == nil {
		return 0, err
	}
	if len(val) != 8 {
		panic(val)
	}
	return binary.BigEndian.Uint64(val), nil
}

func (t *Txn) writeBalance(account string, amount uint64) error {
	val := binary.BigEndian.AppendUint64(nil, amount)
	return t.txn.Set([]byte(prefixBalance+account), val)
}
