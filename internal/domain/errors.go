package domain

import (
	"errors"
	"fmt"
)

// DomainError keeps backward compatibility for generic codes.
type DomainError struct {
	Code string
	Err  error
}

func (e DomainError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	if e.Code == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e DomainError) Unwrap() error {
	return e.Err
}

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s tidak ditemukan", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// InsufficientBalanceError is returned when a debit exceeds the available
// balance. Recoverable by the user (recharge), never by blind retry.
type InsufficientBalanceError struct {
	Balance  int64
	Required int64
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("saldo tidak cukup: saldo %d, dibutuhkan %d", e.Balance, e.Required)
}

// ForbiddenError means the actor has no rights over the target resource.
type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "akses ditolak"
}

// InvalidStateError means the operation is not valid for the current
// lifecycle state (e.g. cancel a past or completed booking).
type InvalidStateError struct {
	State string
	Msg   string
}

func (e InvalidStateError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.State != "" {
		return fmt.Sprintf("operasi tidak valid untuk status %s", e.State)
	}
	return "invalid state"
}

// WalletInactiveError means the wallet is suspended or closed.
type WalletInactiveError struct {
	Status string
}

func (e WalletInactiveError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("wallet tidak aktif (status %s)", e.Status)
	}
	return "wallet tidak aktif"
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInsufficientBalance(err error) bool {
	var target InsufficientBalanceError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target InvalidStateError
	return errors.As(err, &target)
}

func IsWalletInactive(err error) bool {
	var target WalletInactiveError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
