// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"encoding/binary"

	dbm "github.com/33cn/rpsls/common/db"
	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

func calcSessionKey(id common.Address) []byte {
	return append(append([]byte{}, types.SessionKeyPrefix...), id.Bytes()...)
}

// 参与者索引 prefix + player + id
func calcPlayerPrefix(player common.Address) []byte {
	return append(append([]byte{}, types.PlayerKeyPrefix...), player.Bytes()...)
}

func calcPlayerKey(player, id common.Address) []byte {
	return append(calcPlayerPrefix(player), id.Bytes()...)
}

func calcNonceKey(addr common.Address) []byte {
	return append(append([]byte{}, types.NonceKeyPrefix...), addr.Bytes()...)
}

func getNonce(db dbm.KV, addr common.Address) (uint64, error) {
	value, err := db.Get(calcNonceKey(addr))
	if err == dbm.ErrNotFoundInDb {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(types.ErrInternal, err.Error())
	}
	if len(value) != 8 {
		return 0, errors.Wrap(types.ErrUnmarshal, "nonce")
	}
	return binary.BigEndian.Uint64(value), nil
}

func setNonce(db dbm.KV, addr common.Address, nonce uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	return db.Set(calcNonceKey(addr), buf[:])
}

func getSession(db dbm.KV, id common.Address) (*types.Session, error) {
	value, err := db.Get(calcSessionKey(id))
	if err == dbm.ErrNotFoundInDb {
		return nil, types.ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(types.ErrInternal, err.Error())
	}
	return types.DecodeSession(value)
}

// saveSession 写入对局并更新参与者索引
func saveSession(db dbm.KV, s *types.Session) error {
	value, err := types.EncodeSession(s)
	if err != nil {
		return err
	}
	if err := db.Set(calcSessionKey(s.ID), value); err != nil {
		return err
	}
	for _, player := range []common.Address{s.Player1, s.Player2, s.Opponent} {
		if player == (common.Address{}) {
			continue
		}
		if err := db.Set(calcPlayerKey(player, s.ID), s.ID.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// load 先查缓存
func (e *Executor) load(id common.Address) (*types.Session, error) {
	if v, ok := e.cache.Get(id); ok {
		return v.(*types.Session).Clone(), nil
	}
	s, err := getSession(e.db, id)
	if err != nil {
		return nil, err
	}
	e.cache.Add(id, s.Clone())
	return s, nil
}
