// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package secret 保存玩家1的出招和盐, 加密后落盘
package secret

import (
	"crypto/rand"
	"io"

	"github.com/33cn/rpsls/common/commit"
	dbm "github.com/33cn/rpsls/common/db"
	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	log "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var slog = log.New("module", "wallet.secret")

// Encryptor is the per-address encryption capability
type Encryptor interface {
	EncryptionPublicKey(owner common.Address) ([32]byte, error)
	Encrypt(pub [32]byte, plaintext []byte) ([]byte, error)
	Decrypt(owner common.Address, ciphertext []byte) ([]byte, error)
}

type record struct {
	Owner common.Address
	Move  uint8
	Salt  types.Salt
}

// Store 每个地址最多一条有效记录
type Store struct {
	db  dbm.DB
	enc Encryptor
}

// New store over db, sealing records with enc
func New(db dbm.DB, enc Encryptor) *Store {
	return &Store{db: db, enc: enc}
}

// GenerateSalt 256 位随机数
func GenerateSalt() (types.Salt, error) {
	var s types.Salt
	if _, err := io.ReadFull(rand.Reader, s[:]); err != nil {
		return s, errors.Wrap(types.ErrInternal, err.Error())
	}
	return s, nil
}

// Store seals (move, salt) for owner, replacing any previous record.
// A (move, salt) whose commitment owner already stored once is refused.
func (s *Store) Store(owner common.Address, move types.Move, salt types.Salt) error {
	return s.seal(secretKey(owner), owner, move, salt)
}

// Stage seals (move, salt) beside the live record of owner.
// The live record stays as it is until Promote.
func (s *Store) Stage(owner common.Address, move types.Move, salt types.Salt) error {
	return s.seal(pendingKey(owner), owner, move, salt)
}

// Promote makes the staged record of owner the live one
func (s *Store) Promote(owner common.Address) error {
	sealed, err := s.db.Get(pendingKey(owner))
	if err == dbm.ErrNotFoundInDb {
		return types.ErrSecretNotFound
	}
	if err != nil {
		return storageErr(err)
	}
	batch := s.db.NewBatch(true)
	batch.Set(secretKey(owner), sealed)
	batch.Delete(pendingKey(owner))
	if err := batch.Write(); err != nil {
		slog.Error("Promote", "owner", owner, "err", err)
		return storageErr(err)
	}
	return nil
}

// Discard drops the staged record of owner
func (s *Store) Discard(owner common.Address) error {
	if err := s.db.Delete(pendingKey(owner)); err != nil {
		return storageErr(err)
	}
	return nil
}

// Retrieve opens the record of owner
func (s *Store) Retrieve(owner common.Address) (types.Move, types.Salt, error) {
	return s.open(secretKey(owner), owner)
}

// RetrieveStaged opens the staged record of owner
func (s *Store) RetrieveStaged(owner common.Address) (types.Move, types.Salt, error) {
	return s.open(pendingKey(owner), owner)
}

func (s *Store) seal(key []byte, owner common.Address, move types.Move, salt types.Salt) error {
	c, err := commit.Commit(move, salt)
	if err != nil {
		return err
	}
	spent := spentKey(owner, c)
	if _, err := s.db.Get(spent); err == nil {
		return types.ErrSaltReused
	} else if err != dbm.ErrNotFoundInDb {
		return storageErr(err)
	}

	pub, err := s.enc.EncryptionPublicKey(owner)
	if err != nil {
		slog.Error("seal", "owner", owner, "err", err)
		return errors.Wrap(types.ErrEncryptionUnavailable, err.Error())
	}
	plain, err := rlp.EncodeToBytes(&record{Owner: owner, Move: uint8(move), Salt: salt})
	if err != nil {
		return errors.Wrap(types.ErrMarshal, err.Error())
	}
	sealed, err := s.enc.Encrypt(pub, plain)
	if err != nil {
		return errors.Wrap(types.ErrEncryptionUnavailable, err.Error())
	}

	batch := s.db.NewBatch(true)
	batch.Set(key, sealed)
	batch.Set(spent, []byte{1})
	if err := batch.Write(); err != nil {
		slog.Error("seal", "owner", owner, "err", err)
		return storageErr(err)
	}
	return nil
}

func (s *Store) open(key []byte, owner common.Address) (types.Move, types.Salt, error) {
	var salt types.Salt
	sealed, err := s.db.Get(key)
	if err == dbm.ErrNotFoundInDb {
		return types.MoveNone, salt, types.ErrSecretNotFound
	}
	if err != nil {
		return types.MoveNone, salt, storageErr(err)
	}
	plain, err := s.enc.Decrypt(owner, sealed)
	if err != nil {
		if types.KindOf(err) == types.KindSecret {
			return types.MoveNone, salt, err
		}
		return types.MoveNone, salt, errors.Wrap(types.ErrDecryptionFailed, err.Error())
	}
	var rec record
	if err := rlp.DecodeBytes(plain, &rec); err != nil {
		return types.MoveNone, salt, errors.Wrap(types.ErrDecryptionFailed, err.Error())
	}
	move := types.Move(rec.Move)
	if rec.Owner != owner || !move.Valid() {
		return types.MoveNone, salt, errors.Wrap(types.ErrDecryptionFailed, "record does not belong to "+owner.Hex())
	}
	return move, rec.Salt, nil
}

// Has reports whether owner has a live record
func (s *Store) Has(owner common.Address) (bool, error) {
	_, err := s.db.Get(secretKey(owner))
	if err == dbm.ErrNotFoundInDb {
		return false, nil
	}
	if err != nil {
		return false, storageErr(err)
	}
	return true, nil
}

// Consume deletes the record after a confirmed reveal
func (s *Store) Consume(owner common.Address) error {
	if err := s.db.Delete(secretKey(owner)); err != nil {
		return storageErr(err)
	}
	return nil
}

func secretKey(owner common.Address) []byte {
	return append(append([]byte{}, types.SecretKeyPrefix...), owner.Bytes()...)
}

func pendingKey(owner common.Address) []byte {
	return append(append([]byte{}, types.PendingKeyPrefix...), owner.Bytes()...)
}

func spentKey(owner common.Address, c types.Commitment) []byte {
	key := append(append([]byte{}, types.SpentKeyPrefix...), owner.Bytes()...)
	return append(key, c[:]...)
}

func storageErr(err error) error {
	if dbm.IsStorageFull(err) {
		return errors.Wrap(types.ErrStorageFull, err.Error())
	}
	return errors.Wrap(types.ErrStorageDenied, err.Error())
}
