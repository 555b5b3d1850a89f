package host_test

import (
	"context"
	"errors"
	"testing"

	"github.com/MixinNetwork/collectables/host"
	"github.com/MixinNetwork/collectables/nft"
	"github.com/MixinNetwork/collectables/store"
	"github.com/MixinNetwork/mixin/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "c94ac88f-4671-3976-b60a-09064f1811e8"
	bob   = "e9e5b807-fa8b-455a-8dfa-b189d28310ff"
)

type testNode struct {
	t    *testing.T
	ctx  context.Context
	db   *store.BadgerStore
	host *host.Host
	reg  *prometheus.Registry
}

func testConfiguration() *host.Configuration {
	conf := host.DefaultConfiguration()
	conf.Genesis = []*host.GenesisBalance{{Account: bob, Balance: "10"}}
	return conf
}

func setup(t *testing.T) *testNode {
	ctx, cancel := context.WithCancel(context.Background())
	db, err := store.OpenMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		db.Close()
	})
	reg := prometheus.NewRegistry()
	h, err := host.BuildHost(ctx, db, testConfiguration(), reg)
	require.NoError(t, err)
	return &testNode{t: t, ctx: ctx, db: db, host: h, reg: reg}
}

// apply submits one call and processes the queue until it is done.
func (n *testNode) apply(caller, nonce string, call *nft.Call) *host.Action {
	act, err := n.host.Submit(n.ctx, caller, nonce, call)
	require.NoError(n.t, err)
	for act.State == host.ActionStateInitial {
		_, err = n.host.Process(n.ctx)
		require.NoError(n.t, err)
		act, err = n.host.Receipt(act.Id)
		require.NoError(n.t, err)
	}
	return act
}

func (n *testNode) gauge(name string) float64 {
	mfs, err := n.reg.Gather()
	require.NoError(n.t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	n.t.Fatalf("metric %s not found", name)
	return 0
}

func TestGenesis(t *testing.T) {
	n := setup(t)
	b, err := n.db.ReadBalance(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000000000), b)

	_, err = host.BuildHost(n.ctx, n.db, testConfiguration(), nil)
	require.NoError(t, err)
	b, err = n.db.ReadBalance(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000000000), b)
}

func TestSubmitIdempotent(t *testing.T) {
	n := setup(t)
	first, err := n.host.Submit(n.ctx, alice, "nonce", &nft.Call{Kind: nft.CallCreateKitty})
	require.NoError(t, err)
	second, err := n.host.Submit(n.ctx, alice, "nonce", &nft.Call{Kind: nft.CallCreateKitty})
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, host.ActionId(alice, "nonce"), first.Id)

	processed, err := n.host.Process(n.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	again := n.apply(alice, "nonce", &nft.Call{Kind: nft.CallCreateKitty})
	assert.Equal(t, first.Id, again.Id)
	count, err := n.host.Count()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), count)
}

func TestSubmitInvalidAccount(t *testing.T) {
	n := setup(t)
	_, err := n.host.Submit(n.ctx, "alice", "1", &nft.Call{Kind: nft.CallCreateKitty})
	assert.Error(t, err)
	_, err = n.host.Submit(n.ctx, "00000000-0000-0000-0000-000000000000", "1", &nft.Call{Kind: nft.CallCreateKitty})
	assert.Error(t, err)
	_, err = n.host.Submit(n.ctx, alice, "1", &nft.Call{Kind: nft.CallTransfer, To: "bob"})
	assert.Error(t, err)

	processed, err := n.host.Process(n.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestProcessMarketplace(t *testing.T) {
	require := require.New(t)
	n := setup(t)

	var events []*nft.Event
	record := func(evt *nft.Event) { events = append(events, evt) }
	for _, kind := range []string{nft.EventCreated, nft.EventPriceSet, nft.EventSold, nft.EventTransferred} {
		require.NoError(n.host.Subscribe(kind, record))
	}

	minted := n.apply(alice, "1", &nft.Call{Kind: nft.CallCreateKitty})
	require.Empty(minted.Error)
	require.NotNil(minted.Event)
	id := minted.Event.Id
	assert.Equal(t, uint64(1), minted.Height)
	assert.Equal(t, 1.0, n.gauge("collectables_assets"))

	p, err := host.ParseAmount("2.5")
	require.NoError(err)
	listed := n.apply(alice, "2", &nft.Call{Kind: nft.CallSetPrice, Id: id, Price: &p})
	require.Empty(listed.Error)
	assert.Equal(t, uint64(2), listed.Height)

	low := n.apply(bob, "1", &nft.Call{Kind: nft.CallBuyKitty, Id: id, MaxPrice: p - 1})
	assert.Equal(t, "MaxPriceTooLow", low.Error)
	assert.Nil(t, low.Event)

	sold := n.apply(bob, "2", &nft.Call{Kind: nft.CallBuyKitty, Id: id, MaxPrice: p})
	require.Empty(sold.Error)
	assert.Equal(t, &nft.Event{Kind: nft.EventSold, Buyer: bob, Id: id, Price: &p}, sold.Event)

	a, err := n.host.Asset(id)
	require.NoError(err)
	assert.Equal(t, bob, a.Owner)
	assert.Nil(t, a.Price)
	owned, err := n.host.Owned(bob)
	require.NoError(err)
	assert.Equal(t, []crypto.Hash{id}, owned)
	b, err := n.db.ReadBalance(alice)
	require.NoError(err)
	assert.Equal(t, "2.5", host.FormatAmount(b))
	b, err = n.db.ReadBalance(bob)
	require.NoError(err)
	assert.Equal(t, "7.5", host.FormatAmount(b))

	require.Len(events, 3)
	assert.Equal(t, nft.EventCreated, events[0].Kind)
	assert.Equal(t, nft.EventPriceSet, events[1].Kind)
	assert.Equal(t, nft.EventSold, events[2].Kind)
	require.NoError(n.host.Verify())

	series, err := testutil.GatherAndCount(n.reg, "collectables_calls_total")
	require.NoError(err)
	assert.Equal(t, 4, series)
}

func TestProcessRoundOrder(t *testing.T) {
	require := require.New(t)
	n := setup(t)

	var acts []*host.Action
	for _, nonce := range []string{"1", "2", "3"} {
		act, err := n.host.Submit(n.ctx, alice, nonce, &nft.Call{Kind: nft.CallCreateKitty})
		require.NoError(err)
		acts = append(acts, act)
	}
	rejected, err := n.host.Submit(n.ctx, bob, "1", &nft.Call{Kind: nft.CallTransfer, To: alice, Id: crypto.NewHash([]byte("none"))})
	require.NoError(err)
	acts = append(acts, rejected)

	processed, err := n.host.Process(n.ctx)
	require.NoError(err)
	assert.Equal(t, 4, processed)

	ids := make(map[crypto.Hash]bool)
	for i, act := range acts {
		done, err := n.host.Receipt(act.Id)
		require.NoError(err)
		assert.Equal(t, host.ActionStateDone, done.State)
		assert.Equal(t, uint64(1), done.Height)
		assert.Equal(t, uint32(i), done.Index)
		if done.Event != nil {
			ids[done.Event.Id] = true
		}
	}
	assert.Len(t, ids, 3)

	done, err := n.host.Receipt(rejected.Id)
	require.NoError(err)
	assert.Equal(t, "NoSuchAsset", done.Error)

	owned, err := n.host.Owned(alice)
	require.NoError(err)
	assert.Len(t, owned, 3)
	count, err := n.host.Count()
	require.NoError(err)
	assert.Equal(t, uint32(3), count)
	assert.Equal(t, 3.0, n.gauge("collectables_assets"))

	processed, err = n.host.Process(n.ctx)
	require.NoError(err)
	assert.Equal(t, 0, processed)
}

func TestAssetMissing(t *testing.T) {
	n := setup(t)
	_, err := n.host.Asset(crypto.NewHash([]byte("none")))
	assert.ErrorIs(t, err, nft.ErrNoSuchAsset)

	act, err := n.host.Receipt(host.ActionId(alice, "none"))
	require.NoError(t, err)
	assert.Nil(t, act)
}

type failingStore struct {
	*store.BadgerStore
	applied int
	failAt  int
}

func (s *failingStore) ApplyAction(act *host.Action, round *host.Round, fn func(txn nft.Txn) (*nft.Event, error)) error {
	s.applied++
	if s.applied == s.failAt {
		return errors.New("disk unavailable")
	}
	return s.BadgerStore.ApplyAction(act, round, fn)
}

func TestProcessResumesRound(t *testing.T) {
	require := require.New(t)
	n := setup(t)
	fs := &failingStore{BadgerStore: n.db, failAt: 2}
	h, err := host.BuildHost(n.ctx, fs, testConfiguration(), nil)
	require.NoError(err)

	var acts []*host.Action
	for _, nonce := range []string{"1", "2", "3"} {
		act, err := h.Submit(n.ctx, alice, nonce, &nft.Call{Kind: nft.CallCreateKitty})
		require.NoError(err)
		acts = append(acts, act)
	}

	processed, err := h.Process(n.ctx)
	require.Error(err)
	assert.Equal(t, 1, processed)
	processed, err = h.Process(n.ctx)
	require.NoError(err)
	assert.Equal(t, 2, processed)

	type slot struct {
		height uint64
		index  uint32
	}
	slots := make(map[slot]bool)
	ids := make(map[crypto.Hash]bool)
	for i, act := range acts {
		done, err := h.Receipt(act.Id)
		require.NoError(err)
		require.Equal(host.ActionStateDone, done.State)
		require.NotNil(done.Event)
		assert.Equal(t, uint64(1), done.Height)
		assert.Equal(t, uint32(i), done.Index)
		slots[slot{done.Height, done.Index}] = true
		ids[done.Event.Id] = true
	}
	assert.Len(t, slots, 3)
	assert.Len(t, ids, 3)
	require.NoError(h.Verify())

	next := n.apply(bob, "1", &nft.Call{Kind: nft.CallCreateKitty})
	assert.Equal(t, uint64(2), next.Height)
	assert.Equal(t, uint32(0), next.Index)
}

func TestBuildHostCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	db, err := store.OpenMemory(ctx)
	require.NoError(t, err)
	defer db.Close()
	cancel()

	_, err = host.BuildHost(ctx, db, testConfiguration(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	b, err := db.ReadBalance(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), b)
}
