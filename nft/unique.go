package nft

import (
	"encoding/binary"

	"github.com/MixinNetwork/mixin/crypto"
)

// IdGenerator derives the identifier of the next minted asset. It must be a
// pure function of its inputs so replicas agree on the result.
type IdGenerator func(caller string, env *Env, count uint32) crypto.Hash

// UniqueAssetId hashes the caller together with the host entropy and the
// current registry size. Collisions are not assumed impossible, Mint checks.
func UniqueAssetId(caller string, env *Env, count uint32) crypto.Hash {
	buf := make([]byte, 0, len(caller)+32+8+4+4)
	buf = append(buf, caller...)
	buf = append(buf, env.Parent[:]...)
	buf = binary.BigEndian.AppendUint64(buf, env.Height)
	buf = binary.BigEndian.AppendUint32(buf, env.Index)
	buf = binary.BigEndian.AppendUint32(buf, count)
	return crypto.NewHash(buf)
}
