package services

import "errors"

var (
	// ErrInvalidPassphrase means the candidate key failed verification.
	// User-correctable; shown inline.
	ErrInvalidPassphrase = errors.New("invalid passphrase")

	// ErrVerificationUnavailable means the passphrase could not be checked
	// because the backend was unreachable. Transient; never to be presented
	// as a wrong passphrase.
	ErrVerificationUnavailable = errors.New("verification unavailable")

	// ErrNotUnlocked is returned when encrypt/decrypt is called outside the
	// unlocked state. Programmer error in the calling flow.
	ErrNotUnlocked = errors.New("encryption session is not unlocked")

	// ErrMissingFields is returned when a record to encrypt lacks a
	// mandatory field.
	ErrMissingFields = errors.New("missing required record fields")

	// ErrNotSetUp is returned when unlock is attempted before setup.
	ErrNotSetUp = errors.New("encryption is not set up")

	// ErrAlreadySetUp is returned when setup is attempted twice.
	ErrAlreadySetUp = errors.New("encryption is already set up")

	// ErrDataInconsistency is the fatal state where the backend has
	// encrypted analyses but no salt. Encryption stays disabled until the
	// inconsistency is resolved externally.
	ErrDataInconsistency = errors.New("no salt on record but encrypted analyses exist")
)
