// Package errs holds the sentinel errors returned by trade and ledger operations.
// Callers match them with errors.Is; every rejection leaves state unchanged.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyInTrade means the user already holds a trade lock.
	ErrAlreadyInTrade = errors.New("already in a trade")

	// ErrNotMissing means the proposer asked for a card they do not list as missing.
	ErrNotMissing = errors.New("card is not in the missing list")

	// ErrAcceptorMissingCard means the acceptor offered a card they are missing themselves.
	ErrAcceptorMissingCard = errors.New("acceptor does not own the offered card")

	// ErrProposerMissingOfferedCard means the offered card is one the proposer is missing.
	ErrProposerMissingOfferedCard = errors.New("proposer is missing the offered card")

	// ErrNoActiveProposal means there is no pending trade to match.
	ErrNoActiveProposal = errors.New("no active proposal")

	// ErrSelfTrade means a user tried to accept their own proposal.
	ErrSelfTrade = errors.New("cannot trade with yourself")

	// ErrUnknownTrade means the trade does not exist or is not in a state that allows the operation.
	ErrUnknownTrade = errors.New("unknown trade")

	// ErrNotAParty means the caller is neither the proposer nor the acceptor.
	ErrNotAParty = errors.New("not a party to this trade")

	// ErrBadRequest means an interaction payload could not be parsed.
	ErrBadRequest = errors.New("bad request")

	// ErrStorageFailure wraps faults from the persistence layer.
	ErrStorageFailure = errors.New("storage failure")

	// ErrUnknownExpansion means the named expansion has not been registered.
	ErrUnknownExpansion = errors.New("unknown expansion")

	// ErrInvalidCardNumber means the card number is malformed or outside the expansion.
	ErrInvalidCardNumber = errors.New("invalid card number")
)

// Storage wraps a persistence error so it matches ErrStorageFailure
// while keeping the driver error reachable for errors.As.
func Storage(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStorageFailure, err)
}

// BadRequest wraps a parse failure so it matches ErrBadRequest
func BadRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// IsRejection reports whether err is a protocol rejection rather than a system fault
func IsRejection(err error) bool {
	for _, sentinel := range []error{
		ErrAlreadyInTrade,
		ErrNotMissing,
		ErrAcceptorMissingCard,
		ErrProposerMissingOfferedCard,
		ErrNoActiveProposal,
		ErrSelfTrade,
		ErrUnknownTrade,
		ErrNotAParty,
		ErrBadRequest,
		ErrUnknownExpansion,
		ErrInvalidCardNumber,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
