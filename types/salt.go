// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SaltLength is the byte width of a salt (uint256)
const SaltLength = 32

// CommitmentLength is the byte width of a commitment hash
const CommitmentLength = 32

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Salt is a 256-bit unsigned integer kept as 32 big-endian bytes.
type Salt [SaltLength]byte

// SaltFromBig converts a non-negative integer below 2^256.
func SaltFromBig(n *big.Int) (Salt, error) {
	var s Salt
	if n == nil || n.Sign() < 0 || n.Cmp(maxUint256) > 0 {
		return s, ErrInvalidParam
	}
	n.FillBytes(s[:])
	return s, nil
}

// ParseSalt accepts a 0x-prefixed 32 byte hex string or a decimal integer.
func ParseSalt(str string) (Salt, error) {
	var s Salt
	if has0xPrefix(str) {
		if err := s.UnmarshalText([]byte(str)); err != nil {
			return s, ErrInvalidParam
		}
		return s, nil
	}
	n, ok := new(big.Int).SetString(str, 10)
	if !ok {
		return s, ErrInvalidParam
	}
	return SaltFromBig(n)
}

// Big returns the salt as an integer
func (s Salt) Big() *big.Int {
	return new(big.Int).SetBytes(s[:])
}

// Hex returns the 0x-prefixed hex encoding
func (s Salt) Hex() string {
	return hexutil.Encode(s[:])
}

// String prints the decimal form, matching how the salt is shown to players.
func (s Salt) String() string {
	return s.Big().String()
}

// IsZero reports whether every byte is zero
func (s Salt) IsZero() bool {
	return s == Salt{}
}

// MarshalText implements encoding.TextMarshaler
func (s Salt) MarshalText() ([]byte, error) {
	return hexutil.Bytes(s[:]).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Salt) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Salt", input, s[:])
}

// Commitment is the public keccak256 hash of (move, salt)
type Commitment [CommitmentLength]byte

// BytesToCommitment copies b into a commitment, b must be exactly 32 bytes
func BytesToCommitment(b []byte) (Commitment, error) {
	var c Commitment
	if len(b) != CommitmentLength {
		return c, ErrInvalidParam
	}
	copy(c[:], b)
	return c, nil
}

// HexToCommitment parses a 0x-prefixed hex commitment
func HexToCommitment(str string) (Commitment, error) {
	var c Commitment
	if err := c.UnmarshalText([]byte(str)); err != nil {
		return c, ErrInvalidParam
	}
	return c, nil
}

// Hex returns the 0x-prefixed hex encoding
func (c Commitment) Hex() string {
	return hexutil.Encode(c[:])
}

func (c Commitment) String() string {
	return c.Hex()
}

// IsZero reports whether the commitment is unset
func (c Commitment) IsZero() bool {
	return c == Commitment{}
}

// MarshalText implements encoding.TextMarshaler
func (c Commitment) MarshalText() ([]byte, error) {
	return hexutil.Bytes(c[:]).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Commitment) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Commitment", input, c[:])
}

func has0xPrefix(str string) bool {
	return len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X')
}
