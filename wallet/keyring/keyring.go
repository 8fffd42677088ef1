// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package keyring 管理每个地址的 x25519 加密密钥
//
// 私钥用口令派生的密钥(scrypt)以 secretbox 加密后落盘, 公钥明文保存.
// 加密信封与 eth-sig-util 的 x25519-xsalsa20-poly1305 格式一致.
package keyring

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"sync"

	dbm "github.com/33cn/rpsls/common/db"
	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	log "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

// Version 信封版本
const Version = "x25519-xsalsa20-poly1305"

var (
	klog = log.New("module", "wallet.keyring")

	checkPlaintext = []byte("rpsls-keyring-check")

	// scrypt 参数
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// Envelope 加密信封
type Envelope struct {
	Version        string `json:"version"`
	Nonce          string `json:"nonce"`
	EphemPublicKey string `json:"ephemPublicKey"`
	Ciphertext     string `json:"ciphertext"`
}

type checkRecord struct {
	Salt   []byte
	N      uint64
	Sealed []byte
}

type keyRecord struct {
	Addr       common.Address
	PublicKey  []byte
	SealedPriv []byte
}

// Keyring 加密密钥环
type Keyring struct {
	db   dbm.DB
	rand io.Reader

	mu  sync.RWMutex
	key *[32]byte
}

// New keyring stored in db, locked
func New(db dbm.DB) *Keyring {
	return &Keyring{db: db, rand: rand.Reader}
}

// IsLocked reports whether private keys are unavailable
func (k *Keyring) IsLocked() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.key == nil
}

// Lock forgets the password key
func (k *Keyring) Lock() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.key = nil
}

// HasPassword reports whether SetPassword was called on this keyring
func (k *Keyring) HasPassword() (bool, error) {
	_, err := k.db.Get(types.KeyringCheckKey)
	if err == dbm.ErrNotFoundInDb {
		return false, nil
	}
	if err != nil {
		return false, storageErr(err)
	}
	return true, nil
}

// SetPassword 初始化口令, 只能设置一次. 设置后密钥环处于解锁状态
func (k *Keyring) SetPassword(password string) error {
	if password == "" {
		return types.ErrWrongPassword
	}
	has, err := k.HasPassword()
	if err != nil {
		return err
	}
	if has {
		return types.ErrPasswordSet
	}
	salt := make([]byte, 16)
	if _, err := io.ReadFull(k.rand, salt); err != nil {
		return errors.Wrap(types.ErrInternal, err.Error())
	}
	key, err := deriveKey(password, salt, scryptN)
	if err != nil {
		return err
	}
	sealed, err := k.sealSecret(checkPlaintext, key)
	if err != nil {
		return err
	}
	value, err := rlp.EncodeToBytes(&checkRecord{Salt: salt, N: uint64(scryptN), Sealed: sealed})
	if err != nil {
		return errors.Wrap(types.ErrMarshal, err.Error())
	}
	if err := k.db.SetSync(types.KeyringCheckKey, value); err != nil {
		return storageErr(err)
	}
	k.mu.Lock()
	k.key = key
	k.mu.Unlock()
	klog.Info("keyring password set")
	return nil
}

// Unlock derives the password key and checks it against the one set by SetPassword
func (k *Keyring) Unlock(password string) error {
	if password == "" {
		return types.ErrWrongPassword
	}
	value, err := k.db.Get(types.KeyringCheckKey)
	if err == dbm.ErrNotFoundInDb {
		return types.ErrPasswordNotSet
	}
	if err != nil {
		return storageErr(err)
	}
	var rec checkRecord
	if err := rlp.DecodeBytes(value, &rec); err != nil {
		return errors.Wrap(types.ErrUnmarshal, err.Error())
	}
	key, err := deriveKey(password, rec.Salt, int(rec.N))
	if err != nil {
		return err
	}
	plain, err := openSecret(rec.Sealed, key)
	if err != nil || !bytes.Equal(plain, checkPlaintext) {
		klog.Warn("Unlock", "err", "wrong password")
		return types.ErrWrongPassword
	}
	k.mu.Lock()
	k.key = key
	k.mu.Unlock()
	return nil
}

// NewAccount generates a fresh address and its encryption key.
// Only the address is kept: the secp256k1 private key behind it is dropped, and
// the keyring never signs anything.
func (k *Keyring) NewAccount() (common.Address, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, errors.Wrap(types.ErrInternal, err.Error())
	}
	addr := crypto.PubkeyToAddress(priv.PublicKey)
	if err := k.Import(addr); err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

// Import creates an encryption key for an existing address
func (k *Keyring) Import(addr common.Address) error {
	if addr == (common.Address{}) {
		return types.ErrInvalidAddress
	}
	k.mu.RLock()
	key := k.key
	k.mu.RUnlock()
	if key == nil {
		return types.ErrKeyringLocked
	}
	if _, err := k.db.Get(keyKey(addr)); err == nil {
		return errors.Wrap(types.ErrInvalidAddress, "key exists for "+addr.Hex())
	}
	pub, priv, err := box.GenerateKey(k.rand)
	if err != nil {
		return errors.Wrap(types.ErrInternal, err.Error())
	}
	sealed, err := k.sealSecret(priv[:], key)
	if err != nil {
		return err
	}
	value, err := rlp.EncodeToBytes(&keyRecord{Addr: addr, PublicKey: pub[:], SealedPriv: sealed})
	if err != nil {
		return errors.Wrap(types.ErrMarshal, err.Error())
	}
	if err := k.db.SetSync(keyKey(addr), value); err != nil {
		return storageErr(err)
	}
	klog.Info("Import", "addr", addr)
	return nil
}

// Addresses 有加密密钥的地址
func (k *Keyring) Addresses() ([]common.Address, error) {
	values, err := k.db.PrefixScan(types.KeyringKeyPrefix)
	if err != nil {
		return nil, storageErr(err)
	}
	var addrs []common.Address
	for _, value := range values {
		var rec keyRecord
		if err := rlp.DecodeBytes(value, &rec); err != nil {
			return nil, errors.Wrap(types.ErrUnmarshal, err.Error())
		}
		addrs = append(addrs, rec.Addr)
	}
	return addrs, nil
}

// EncryptionPublicKey of addr, available while locked
func (k *Keyring) EncryptionPublicKey(addr common.Address) ([32]byte, error) {
	var pub [32]byte
	rec, err := k.load(addr)
	if err != nil {
		return pub, err
	}
	if len(rec.PublicKey) != len(pub) {
		return pub, types.ErrEncryptionUnavailable
	}
	copy(pub[:], rec.PublicKey)
	return pub, nil
}

// Encrypt seals plaintext for the holder of pub with an ephemeral key
func (k *Keyring) Encrypt(pub [32]byte, plaintext []byte) ([]byte, error) {
	ephemPub, ephemPriv, err := box.GenerateKey(k.rand)
	if err != nil {
		return nil, errors.Wrap(types.ErrEncryptionUnavailable, err.Error())
	}
	var nonce [24]byte
	if _, err := io.ReadFull(k.rand, nonce[:]); err != nil {
		return nil, errors.Wrap(types.ErrEncryptionUnavailable, err.Error())
	}
	sealed := box.Seal(nil, plaintext, &nonce, &pub, ephemPriv)
	env := &Envelope{
		Version:        Version,
		Nonce:          base64.StdEncoding.EncodeToString(nonce[:]),
		EphemPublicKey: base64.StdEncoding.EncodeToString(ephemPub[:]),
		Ciphertext:     base64.StdEncoding.EncodeToString(sealed),
	}
	return json.Marshal(env)
}

// Decrypt opens an envelope addressed to addr
func (k *Keyring) Decrypt(addr common.Address, ciphertext []byte) ([]byte, error) {
	k.mu.RLock()
	key := k.key
	k.mu.RUnlock()
	if key == nil {
		return nil, types.ErrKeyringLocked
	}
	rec, err := k.load(addr)
	if err != nil {
		return nil, err
	}
	privBytes, err := openSecret(rec.SealedPriv, key)
	if err != nil || len(privBytes) != 32 {
		return nil, errors.Wrap(types.ErrDecryptionFailed, "private key")
	}
	var priv [32]byte
	copy(priv[:], privBytes)

	var env Envelope
	if err := json.Unmarshal(ciphertext, &env); err != nil {
		return nil, errors.Wrap(types.ErrDecryptionFailed, err.Error())
	}
	if env.Version != Version {
		return nil, errors.Wrap(types.ErrDecryptionFailed, "version "+env.Version)
	}
	nonce, err1 := decodeFixed(env.Nonce, 24)
	ephem, err2 := decodeFixed(env.EphemPublicKey, 32)
	sealed, err3 := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, errors.Wrap(types.ErrDecryptionFailed, "malformed envelope")
	}
	var n [24]byte
	var peer [32]byte
	copy(n[:], nonce)
	copy(peer[:], ephem)
	plain, ok := box.Open(nil, sealed, &n, &peer, &priv)
	if !ok {
		return nil, types.ErrDecryptionFailed
	}
	return plain, nil
}

func (k *Keyring) load(addr common.Address) (*keyRecord, error) {
	value, err := k.db.Get(keyKey(addr))
	if err == dbm.ErrNotFoundInDb {
		return nil, errors.Wrap(types.ErrEncryptionUnavailable, "no key for "+addr.Hex())
	}
	if err != nil {
		return nil, errors.Wrap(types.ErrEncryptionUnavailable, err.Error())
	}
	var rec keyRecord
	if err := rlp.DecodeBytes(value, &rec); err != nil {
		return nil, errors.Wrap(types.ErrUnmarshal, err.Error())
	}
	return &rec, nil
}

func (k *Keyring) sealSecret(plain []byte, key *[32]byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(k.rand, nonce[:]); err != nil {
		return nil, errors.Wrap(types.ErrInternal, err.Error())
	}
	return secretbox.Seal(nonce[:], plain, &nonce, key), nil
}

func openSecret(sealed []byte, key *[32]byte) ([]byte, error) {
	if len(sealed) < 24+secretbox.Overhead {
		return nil, types.ErrDecryptionFailed
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, key)
	if !ok {
		return nil, types.ErrDecryptionFailed
	}
	return plain, nil
}

func deriveKey(password string, salt []byte, n int) (*[32]byte, error) {
	dk, err := scrypt.Key([]byte(password), salt, n, scryptR, scryptP, 32)
	if err != nil {
		return nil, errors.Wrap(types.ErrInternal, err.Error())
	}
	var key [32]byte
	copy(key[:], dk)
	return &key, nil
}

func decodeFixed(s string, size int) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, errors.Errorf("want %d bytes, got %d", size, len(b))
	}
	return b, nil
}

func keyKey(addr common.Address) []byte {
	return append(append([]byte{}, types.KeyringKeyPrefix...), addr.Bytes()...)
}

func storageErr(err error) error {
	if dbm.IsStorageFull(err) {
		return errors.Wrap(types.ErrStorageFull, err.Error())
	}
	return errors.Wrap(types.ErrStorageDenied, err.Error())
}
