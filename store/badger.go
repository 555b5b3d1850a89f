package store

import (
	"context"
	"time"

	"github.com/MixinNetwork/collectables/nft"
	"github.com/MixinNetwork/mixin/logger"
	"github.com/dgraph-io/badger/v3"
)

type BadgerStore struct {
	db      *badger.DB
	minimum uint64
}

func OpenBadger(ctx context.Context, path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	go valueLogGC(ctx, db)

	return &BadgerStore{
		db: db,
	}, nil
}

// OpenMemory keeps everything in memory, the data is gone after Close.
func OpenMemory(ctx context.Context) (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{
		db: db,
	}, nil
}

func valueLogGC(ctx context.Context, db *badger.DB) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Minute):
		}
		lsm, vlog := db.Size()
		logger.Printf("Badger LSM %d VLOG %d\n", lsm, vlog)
		if lsm > 1024*1024*8 || vlog > 1024*1024*32 {
			err := db.RunValueLogGC(0.5)
			logger.Printf("Badger RunValueLogGC %v\n", err)
		}
	}
}

func (bs *BadgerStore) Close() error {
	return bs.db.Close()
}

func (bs *BadgerStore) Badger() *badger.DB {
	return bs.db
}

// SetMinimumBalance makes the ledger refuse any payment that would leave
// the payer below minimum.
func (bs *BadgerStore) SetMinimumBalance(minimum uint64) {
	bs.minimum = minimum
}

func (bs *BadgerStore) Update(fn func(txn nft.Txn) error) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return fn(&Txn{bs: bs, txn: txn})
	})
}

func (bs *BadgerStore) View(fn func(txn nft.Txn) error) error {
	return bs.db.View(func(txn *badger.Txn) error {
		return fn(&Txn{bs: bs, txn: txn})
	})
}

func (bs *BadgerStore) WriteProperty(key, val []byte) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

func (bs *BadgerStore) ReadProperty(key []byte) ([]byte, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
