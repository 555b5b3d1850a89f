package host

import (
	"context"
	"fmt"
	"time"

	"github.com/MixinNetwork/collectables/nft"
	"github.com/fox-one/mixin-sdk-go"
	"github.com/gofrs/uuid"
)

const (
	ActionStateInitial = 10
	ActionStateDone    = 11
)

// Action is a submitted call and, once applied, its receipt.
type Action struct {
	Id        string
	Caller    string
	Call      nft.Call
	State     int
	CreatedAt time.Time
	Height    uint64
	Index     uint32
	Error     string     `msgpack:",omitempty"`
	Event     *nft.Event `msgpack:",omitempty"`
}

func ActionId(caller, nonce string) string {
	return mixin.UniqueConversationID(caller, nonce)
}

// Submit queues a call of caller. The same caller and nonce always map to
// the same action, so submitting twice is harmless.
func (h *Host) Submit(ctx context.Context, caller, nonce string, call *nft.Call) (*Action, error) {
	err := validateAccount(caller)
	if err != nil {
		return nil, err
	}
	if call.Kind == nft.CallTransfer {
		err = validateAccount(call.To)
		if err != nil {
			return nil, err
		}
	}

	id := ActionId(caller, nonce)
	old, err := h.store.ReadAction(id)
	if err != nil || old != nil {
		return old, err
	}
	act := &Action{
		Id:        id,
		Caller:    caller,
		Call:      *call,
		State:     ActionStateInitial,
		CreatedAt: h.clock.Now(),
	}
	err = h.store.WriteAction(act)
	if err != nil {
		return nil, err
	}
	return act, nil
}

func validateAccount(s string) error {
	id, err := uuid.FromString(s)
	if err != nil {
		return fmt.Errorf("invalid account %q: %w", s, err)
	}
	if id == uuid.Nil {
		return fmt.Errorf("invalid account %q: nil uuid", s)
	}
	return nil
}
