package host

import (
	"context"
	"fmt"
	"time"

	"github.com/MixinNetwork/collectables/nft"
	"github.com/MixinNetwork/mixin/logger"
	evbus "github.com/asaskevich/EventBus"
	"github.com/prometheus/client_golang/prometheus"
)

const genesisPropertyKeyPrefix = "HOST:GENESIS:"

// Host applies queued calls one at a time in submission order, each inside
// its own storage transaction.
type Host struct {
	store    Store
	registry *nft.Registry
	clock    *Clock
	bus      evbus.Bus
	metrics  *Metrics

	batch    int
	interval time.Duration
}

func BuildHost(ctx context.Context, store Store, conf *Configuration, reg prometheus.Registerer) (*Host, error) {
	clock, err := NewClock(store)
	if err != nil {
		return nil, err
	}
	h := &Host{
		store:    store,
		registry: nft.NewRegistry(),
		clock:    clock,
		bus:      evbus.New(),
		metrics:  NewMetrics(reg),
		batch:    conf.Host.Batch,
		interval: time.Duration(conf.Host.IntervalMs) * time.Millisecond,
	}
	err = h.genesis(ctx, conf.Genesis)
	if err != nil {
		return nil, err
	}
	return h, h.refreshAssets()
}

// Subscribe registers fn, a func(*nft.Event), for events of kind.
func (h *Host) Subscribe(kind string, fn interface{}) error {
	return h.bus.Subscribe(eventTopic(kind), fn)
}

func (h *Host) Run(ctx context.Context) {
	for {
		n, err := h.Process(ctx)
		if err != nil {
			logger.Printf("Host.Process() => %d %v\n", n, err)
		}
		if n == h.batch && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(h.interval):
		}
	}
}

// Process applies up to one batch of pending actions in the open round,
// opening a new one when the last round is closed. A rejected call still
// completes its action with the error kind, only a storage failure stops the
// round, and the next Process resumes it at the saved index.
func (h *Host) Process(ctx context.Context) (int, error) {
	acts, err := h.store.ListActions(ActionStateInitial, h.batch)
	if err != nil || len(acts) == 0 {
		return 0, err
	}
	round, err := h.openRound()
	if err != nil {
		return 0, err
	}

	for i, act := range acts {
		if ctx.Err() != nil {
			return i, ctx.Err()
		}
		env := &nft.Env{Parent: round.Parent, Height: round.Height, Index: round.Index}
		act.Height = round.Height
		act.Index = round.Index
		next := round.advance(act.Id)
		err = h.store.ApplyAction(act, next, func(txn nft.Txn) (*nft.Event, error) {
			return h.registry.Dispatch(txn, env, act.Caller, &act.Call)
		})
		if err != nil {
			return i, fmt.Errorf("apply action %s: %w", act.Id, err)
		}
		round = next
		h.notify(act)
	}

	round.Open = false
	err = h.store.WriteRound(round)
	if err != nil {
		return len(acts), err
	}
	return len(acts), h.refreshAssets()
}

func (h *Host) openRound() (*Round, error) {
	round, err := h.store.ReadRound()
	if err != nil {
		return nil, err
	}
	if round == nil {
		round = &Round{}
	}
	if round.Open {
		return round, nil
	}
	round = &Round{
		Height: round.Height + 1,
		Parent: round.Digest,
		Digest: round.Digest,
		Open:   true,
	}
	return round, h.store.WriteRound(round)
}

func (h *Host) notify(act *Action) {
	h.metrics.observe(act)
	if act.Event == nil {
		logger.Verbosef("Host.notify(%s, %s) => %s\n", act.Id, act.Call.Kind, act.Error)
		return
	}
	logger.Verbosef("Host.notify(%s, %s) => %s %s\n", act.Id, act.Call.Kind, act.Event.Kind, act.Event.Id)
	h.bus.Publish(eventTopic(act.Event.Kind), act.Event)
}

func (h *Host) refreshAssets() error {
	return h.store.View(func(txn nft.Txn) error {
		n, err := h.registry.Count(txn)
		if err != nil {
			return err
		}
		h.metrics.assets.Set(float64(n))
		return nil
	})
}

func (h *Host) genesis(ctx context.Context, balances []*GenesisBalance) error {
	for _, g := range balances {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := []byte(genesisPropertyKeyPrefix + g.Account)
		done, err := h.store.ReadProperty(key)
		if err != nil {
			return err
		}
		if len(done) > 0 {
			continue
		}
		amount, err := ParseAmount(g.Balance)
		if err != nil {
			return err
		}
		err = h.store.Deposit(g.Account, amount)
		if err != nil {
			return err
		}
		err = h.store.WriteProperty(key, []byte{1})
		if err != nil {
			return err
		}
		logger.Printf("genesis %s %s\n", g.Account, g.Balance)
	}
	return nil
}

func eventTopic(kind string) string {
	return "collectables:" + kind
}
