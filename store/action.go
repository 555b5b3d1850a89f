package store

import (
	"github.com/MixinNetwork/collectables/host"
	"github.com/MixinNetwork/collectables/nft"
	"github.com/MixinNetwork/mixin/common"
	"github.com/dgraph-io/badger/v3"
)

const (
	prefixActionPayload = "ACTION:PAYLOAD:"
	prefixActionState   = "ACTION:STATE:"
)

func (bs *BadgerStore) WriteAction(act *host.Action) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return bs.writeAction(txn, act)
	})
}

func (bs *BadgerStore) ReadAction(id string) (*host.Action, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readAction(txn, id)
}

func (bs *BadgerStore) ListActions(state int, limit int) ([]*host.Action, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(actionStatePrefix(state))
	it := txn.NewIterator(opts)
	defer it.Close()

	var acts []*host.Action
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		key := it.Item().Key()
		id := string(key[len(opts.Prefix)+8:])
		act, err := bs.readAction(txn, id)
		if err != nil {
			return nil, err
		}
		acts = append(acts, act)
		if len(acts) == limit {
			break
		}
	}
	return acts, nil
}

// ApplyAction runs fn and completes act in the same transaction, moving the
// round cursor to round. When fn rejects the call its writes are dropped and
// act is completed alone with the error kind, still moving the cursor. Any
// other failure leaves both act and the cursor untouched.
func (bs *BadgerStore) ApplyAction(act *host.Action, round *host.Round, fn func(txn nft.Txn) (*nft.Event, error)) error {
	err := bs.db.Update(func(txn *badger.Txn) error {
		evt, err := fn(&Txn{bs: bs, txn: txn})
		if err != nil {
			return err
		}
		done := *act
		done.State = host.ActionStateDone
		done.Event = evt
		return bs.completeAction(txn, act, &done, round)
	})
	if err == nil {
		return nil
	}
	kind := nft.ErrorKind(err)
	if kind == "" {
		return err
	}
	return bs.db.Update(func(txn *badger.Txn) error {
		done := *act
		done.State = host.ActionStateDone
		done.Error = kind
		return bs.completeAction(txn, act, &done, round)
	})
}

func (bs *BadgerStore) completeAction(txn *badger.Txn, act, done *host.Action, round *host.Round) error {
	err := bs.writeAction(txn, done)
	if err != nil {
		return err
	}
	err = bs.writeRound(txn, round)
	if err != nil {
		return err
	}
	*act = *done
	return nil
}

func (bs *BadgerStore) writeAction(txn *badger.Txn, act *host.Action) error {
	old, err := bs.resetOldAction(txn, act)
	if err != nil || old != nil {
		return err
	}
	key := []byte(prefixActionPayload + act.Id)
	val := common.MsgpackMarshalPanic(act)
	err = txn.Set(key, val)
	if err != nil {
		return err
	}

	key = buildActionTimedKey(act)
	return txn.Set(key, []byte{1})
}

// resetOldAction returns the stored action if act would not move it
// forward, otherwise it drops the old state index entry.
func (bs *BadgerStore) resetOldAction(txn *badger.Txn, act *host.Action) (*host.Action, error) {
	old, err := bs.readAction(txn, act.Id)
	if err != nil || old == nil {
		return old, err
	}
	if old.State >= act.State {
		return old, nil
	}

	key := buildActionTimedKey(old)
	_, err = txn.Get(key)
	if err != nil {
		panic(key)
	}
	return nil, txn.Delete(key)
}

func (bs *BadgerStore) readAction(txn *badger.Txn, id string) (*host.Action, error) {
	key := []byte(prefixActionPayload + id)
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var act host.Action
	err = common.MsgpackUnmarshal(val, &act)
	return &act, err
}

var _ host.Store = (*BadgerStore)(nil)

func buildActionTimedKey(act *host.Action) []byte {
	buf := tsToBytes(act.CreatedAt)
	prefix := actionStatePrefix(act.State)
	key := append([]byte(prefix), buf...)
	return append(key, []byte(act.Id)...)
}

func actionStatePrefix(state int) string {
	prefix := prefixActionState
	switch state {
	case host.ActionStateInitial:
		return prefix + "initial"
	case host.ActionStateDone:
		return prefix + "doneeee"
	}
	panic(state)
}
