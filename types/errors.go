// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"errors"
)

// input validation errors, safe to retry with corrected input
var (
	ErrInvalidMove    = errors.New("ErrInvalidMove")
	ErrStakeMismatch  = errors.New("ErrStakeMismatch")
	ErrInvalidStake   = errors.New("ErrInvalidStake")
	ErrInvalidAddress = errors.New("ErrInvalidAddress")
	ErrInvalidParam   = errors.New("ErrInvalidParam")
	ErrAmount         = errors.New("ErrAmount")
)

// protocol violations, no state change
var (
	ErrCommitmentMismatch = errors.New("ErrCommitmentMismatch")
	ErrAlreadyJoined      = errors.New("ErrAlreadyJoined")
	ErrUnauthorized       = errors.New("ErrUnauthorized")
	ErrDeadlineNotReached = errors.New("ErrDeadlineNotReached")
	ErrNotJoined          = errors.New("ErrNotJoined")
	ErrSessionClosed      = errors.New("ErrSessionClosed")
	ErrSessionNotFound    = errors.New("ErrSessionNotFound")
	ErrNoBalance          = errors.New("ErrNoBalance")
	ErrTransitionPending  = errors.New("ErrTransitionPending")
)

// local secret-management failures
var (
	ErrSecretNotFound        = errors.New("ErrSecretNotFound")
	ErrDecryptionFailed      = errors.New("ErrDecryptionFailed")
	ErrEncryptionUnavailable = errors.New("ErrEncryptionUnavailable")
	ErrStorageFull           = errors.New("ErrStorageFull")
	ErrStorageDenied         = errors.New("ErrStorageDenied")
	ErrSaltReused            = errors.New("ErrSaltReused")
	ErrKeyringLocked         = errors.New("ErrKeyringLocked")
	ErrWrongPassword         = errors.New("ErrWrongPassword")
	ErrPasswordNotSet        = errors.New("ErrPasswordNotSet")
	ErrPasswordSet           = errors.New("ErrPasswordSet")
)

// transport and internal errors
var (
	ErrTransport = errors.New("ErrTransport")
	ErrMarshal   = errors.New("ErrMarshal")
	ErrUnmarshal = errors.New("ErrUnmarshal")
	ErrInternal  = errors.New("ErrInternal")
)

// ErrorKind groups errors by how a caller may react to them.
type ErrorKind int

// error kinds
const (
	KindNone ErrorKind = iota
	KindInput
	KindProtocol
	KindSecret
	KindTransport
	KindInternal
)

var kindNames = map[ErrorKind]string{
	KindNone:      "none",
	KindInput:     "input",
	KindProtocol:  "protocol",
	KindSecret:    "secret",
	KindTransport: "transport",
	KindInternal:  "internal",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

var errorKinds = map[error]ErrorKind{
	ErrInvalidMove:    KindInput,
	ErrStakeMismatch:  KindInput,
	ErrInvalidStake:   KindInput,
	ErrInvalidAddress: KindInput,
	ErrInvalidParam:   KindInput,
	ErrAmount:         KindInput,

	ErrCommitmentMismatch: KindProtocol,
	ErrAlreadyJoined:      KindProtocol,
	ErrUnauthorized:       KindProtocol,
	ErrDeadlineNotReached: KindProtocol,
	ErrNotJoined:          KindProtocol,
	ErrSessionClosed:      KindProtocol,
	ErrSessionNotFound:    KindProtocol,
	ErrNoBalance:          KindProtocol,
	ErrTransitionPending:  KindProtocol,

	ErrSecretNotFound:        KindSecret,
	ErrDecryptionFailed:      KindSecret,
	ErrEncryptionUnavailable: KindSecret,
	ErrStorageFull:           KindSecret,
	ErrStorageDenied:         KindSecret,
	ErrSaltReused:            KindSecret,
	ErrKeyringLocked:         KindSecret,
	ErrWrongPassword:         KindSecret,
	ErrPasswordNotSet:        KindSecret,
	ErrPasswordSet:           KindSecret,

	ErrTransport: KindTransport,
}

// KindOf classifies err by the sentinel at the root of its wrap chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for sentinel, kind := range errorKinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}

// IsRetryable reports whether the same call may be resubmitted after fixing its input.
// Transport failures are not retryable: the caller must re-read the session first.
func IsRetryable(err error) bool {
	return KindOf(err) == KindInput
}

// Sentinel returns the registered error that err wraps, or nil.
func Sentinel(err error) error {
	if err == nil {
		return nil
	}
	for sentinel := range errorKinds {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}

// ErrorByName maps an error name back to its sentinel, used to rebuild errors received over rpc.
func ErrorByName(name string) (error, bool) {
	for sentinel := range errorKinds {
		if sentinel.Error() == name {
			return sentinel, true
		}
	}
	for _, e := range []error{ErrMarshal, ErrUnmarshal, ErrInternal} {
		if e.Error() == name {
			return e, true
		}
	}
	return nil, false
}
