// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commit 出招承诺: keccak256(move || salt)
package commit

import (
	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// EncodedLen 编码后的长度: 1 字节出招 + 32 字节盐
const EncodedLen = 1 + 32

// Encode 按 abi.encodePacked(uint8, uint256) 的方式拼接出招和盐
func Encode(move types.Move, salt types.Salt) []byte {
	buf := make([]byte, EncodedLen)
	buf[0] = byte(move)
	copy(buf[1:], salt[:])
	return buf
}

// Commit 计算承诺, 出招不合法时返回 ErrInvalidMove
func Commit(move types.Move, salt types.Salt) (types.Commitment, error) {
	if !move.Valid() {
		return types.Commitment{}, types.ErrInvalidMove
	}
	var c types.Commitment
	copy(c[:], crypto.Keccak256(Encode(move, salt)))
	return c, nil
}

// Verify 检查 (move, salt) 是否与承诺一致
func Verify(c types.Commitment, move types.Move, salt types.Salt) bool {
	got, err := Commit(move, salt)
	if err != nil {
		return false
	}
	return got == c
}
