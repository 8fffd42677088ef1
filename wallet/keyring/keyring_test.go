// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package keyring

import (
	"encoding/json"
	"testing"

	dbm "github.com/33cn/rpsls/common/db"
	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	scryptN = 1 << 10
}

var addr1 = common.HexToAddress("0x1000000000000000000000000000000000000001")

func newKeyring(t *testing.T) (*Keyring, dbm.DB) {
	store, err := dbm.NewGoMemDB("wallet", "", 0)
	require.NoError(t, err)
	k := New(store)
	require.NoError(t, k.SetPassword("123456"))
	return k, store
}

func TestSetPassword(t *testing.T) {
	store, err := dbm.NewGoMemDB("wallet", "", 0)
	require.NoError(t, err)
	k := New(store)
	has, err := k.HasPassword()
	require.NoError(t, err)
	assert.False(t, has)
	// 未设置口令时不能解锁
	assert.Equal(t, types.ErrPasswordNotSet, k.Unlock("123456"))
	assert.True(t, k.IsLocked())

	assert.Equal(t, types.ErrWrongPassword, k.SetPassword(""))
	require.NoError(t, k.SetPassword("123456"))
	assert.False(t, k.IsLocked())
	has, err = k.HasPassword()
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, types.ErrPasswordSet, k.SetPassword("654321"))

	k.Lock()
	assert.Equal(t, types.ErrWrongPassword, k.Unlock("654321"))
	require.NoError(t, k.Unlock("123456"))
}

func TestUnlock(t *testing.T) {
	k, store := newKeyring(t)
	assert.False(t, k.IsLocked())
	k.Lock()
	assert.True(t, k.IsLocked())

	assert.Equal(t, types.ErrWrongPassword, k.Unlock("654321"))
	assert.Equal(t, types.ErrWrongPassword, k.Unlock(""))
	assert.True(t, k.IsLocked())

	k2 := New(store)
	require.NoError(t, k2.Unlock("123456"))
	assert.False(t, k2.IsLocked())
}

func TestAccounts(t *testing.T) {
	k, _ := newKeyring(t)
	addr, err := k.NewAccount()
	require.NoError(t, err)
	require.NoError(t, k.Import(addr1))
	assert.Equal(t, types.ErrInvalidAddress, errors.Cause(k.Import(addr1)))
	assert.Equal(t, types.ErrInvalidAddress, k.Import(common.Address{}))

	addrs, err := k.Addresses()
	require.NoError(t, err)
	assert.ElementsMatch(t, []common.Address{addr, addr1}, addrs)

	k.Lock()
	assert.Equal(t, types.ErrKeyringLocked, k.Import(common.HexToAddress("0x42")))
}

func TestEncryptDecrypt(t *testing.T) {
	k, _ := newKeyring(t)
	require.NoError(t, k.Import(addr1))

	pub, err := k.EncryptionPublicKey(addr1)
	require.NoError(t, err)
	ct, err := k.Encrypt(pub, []byte("rock and salt"))
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(ct, &env))
	assert.Equal(t, Version, env.Version)

	plain, err := k.Decrypt(addr1, ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("rock and salt"), plain)

	// 公钥在锁定时依然可用, 解密不可用
	k.Lock()
	_, err = k.EncryptionPublicKey(addr1)
	assert.NoError(t, err)
	_, err = k.Decrypt(addr1, ct)
	assert.Equal(t, types.ErrKeyringLocked, err)
}

func TestDecryptFailures(t *testing.T) {
	k, _ := newKeyring(t)
	other := common.HexToAddress("0x2000000000000000000000000000000000000002")
	require.NoError(t, k.Import(addr1))
	require.NoError(t, k.Import(other))

	pub, err := k.EncryptionPublicKey(addr1)
	require.NoError(t, err)
	ct, err := k.Encrypt(pub, []byte("secret"))
	require.NoError(t, err)

	_, err = k.Decrypt(other, ct)
	assert.Equal(t, types.ErrDecryptionFailed, errors.Cause(err))
	_, err = k.Decrypt(addr1, []byte("not json"))
	assert.Equal(t, types.ErrDecryptionFailed, errors.Cause(err))

	var env Envelope
	require.NoError(t, json.Unmarshal(ct, &env))
	env.Version = "x25519-other"
	bad, _ := json.Marshal(env)
	_, err = k.Decrypt(addr1, bad)
	assert.Equal(t, types.ErrDecryptionFailed, errors.Cause(err))

	_, err = k.EncryptionPublicKey(common.HexToAddress("0x3"))
	assert.Equal(t, types.ErrEncryptionUnavailable, errors.Cause(err))
}
