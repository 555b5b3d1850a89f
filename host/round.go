package host

import (
	"github.com/MixinNetwork/mixin/crypto"
)

// Round is the cursor of the action queue. Every call applied in a round
// gets the round Parent and Height and the next Index, and folds its action
// id into Digest, which becomes the Parent of the following round.
type Round struct {
	Height uint64
	Parent crypto.Hash
	Index  uint32
	Digest crypto.Hash
	Open   bool
}

func (r *Round) advance(actionId string) *Round {
	next := *r
	next.Index = r.Index + 1
	buf := append(append([]byte{}, r.Digest[:]...), actionId...)
	next.Digest = crypto.NewHash(buf)
	return &next
}
