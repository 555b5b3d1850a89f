package store

import (
	"github.com/MixinNetwork/collectables/host"
	"github.com/MixinNetwork/mixin/common"
	"github.com/dgraph-io/badger/v3"
)

const keyHostRound = "HOST:ROUND"

func (bs *BadgerStore) ReadRound() (*host.Round, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	t := &Txn{bs: bs, txn: txn}
	val, err := t.get([]byte(keyHostRound))
	if err != nil || val == nil {
		return nil, err
	}
	var round host.Round
	err = common.MsgpackUnmarshal(val, &round)
	return &round, err
}

func (bs *BadgerStore) WriteRound(round *host.Round) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return bs.writeRound(txn, round)
	})
}

func (bs *BadgerStore) writeRound(txn *badger.Txn, round *host.Round) error {
	val := common.MsgpackMarshalPanic(round)
	return txn.Set([]byte(keyHostRound), val)
}
