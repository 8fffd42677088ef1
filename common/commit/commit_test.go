// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commit

import (
	"math/big"
	"testing"

	"github.com/33cn/rpsls/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salt(t *testing.T, n int64) types.Salt {
	s, err := types.SaltFromBig(big.NewInt(n))
	require.NoError(t, err)
	return s
}

func TestEncode(t *testing.T) {
	b := Encode(types.Spock, salt(t, 258))
	require.Len(t, b, EncodedLen)
	assert.Equal(t, byte(5), b[0])
	assert.Equal(t, byte(1), b[31])
	assert.Equal(t, byte(2), b[32])
}

func TestCommitVectors(t *testing.T) {
	cases := []struct {
		move types.Move
		salt int64
		hash string
	}{
		{types.Rock, 0, "0x0d678e31a4b2825b806fe160675cd01dab159802c7f94397ce45ed91b5f3aac6"},
		{types.Spock, 123456789, "0x80d714c07ed9ae7ec8ff490109748cba9be6292c7a6fd497cefa1f48933c4ca9"},
		{types.Paper, 123456789, "0x4fda179af969dc16c47cb15001750bd87425e2d504271539afcd002d43488f5f"},
	}
	for _, c := range cases {
		got, err := Commit(c.move, salt(t, c.salt))
		require.NoError(t, err)
		assert.Equal(t, c.hash, got.Hex())
	}
}

func TestCommitInvalidMove(t *testing.T) {
	_, err := Commit(types.MoveNone, salt(t, 1))
	assert.Equal(t, types.ErrInvalidMove, err)
	_, err = Commit(types.Move(6), salt(t, 1))
	assert.Equal(t, types.ErrInvalidMove, err)
}

func TestVerify(t *testing.T) {
	s := salt(t, 123456789)
	c, err := Commit(types.Rock, s)
	require.NoError(t, err)

	assert.True(t, Verify(c, types.Rock, s))
	for _, m := range []types.Move{types.Paper, types.Scissors, types.Lizard, types.Spock} {
		assert.False(t, Verify(c, m, s), m.String())
	}
	assert.False(t, Verify(c, types.Rock, salt(t, 123456790)))
	assert.False(t, Verify(c, types.MoveNone, s))
}
