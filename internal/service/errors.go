package service

import "errors"

var (
	// ErrValidation: missing or malformed input; the client must fix
	// the request before retrying.
	ErrValidation = errors.New("invalid input")

	// ErrInvalidCredentials: the password did not match. Deliberately
	// distinct from a hashing-subsystem failure, which propagates as a
	// plain error.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotVerified: login refused because the email is still
	// unverified. A fresh verification code has been issued as a side
	// effect.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrCodeNotFound: no live one-time code for the pair. Covers
	// never issued, expired, superseded and already consumed.
	ErrCodeNotFound = errors.New("code not found or expired")

	// ErrCodeInvalid: a live code exists but the candidate mismatched.
	// The record stays so the owner may retry until expiry.
	ErrCodeInvalid = errors.New("code invalid")

	// ErrTokenInvalid: refresh token whose subject no longer resolves
	// to an account.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenStale: the presented refresh token is signed and
	// unexpired but no longer the account's current one. It was
	// rotated out or revoked by logout.
	ErrTokenStale = errors.New("token superseded")

	// ErrDeliveryFailed: the mailer reported failure. For registration
	// this leaves a created-but-unverifiable account behind; resending
	// the code is the recovery path.
	ErrDeliveryFailed = errors.New("mail delivery failed")

	// ErrForbidden: the principal lacks the required role or does not
	// own the target resource.
	ErrForbidden = errors.New("forbidden")

	// ErrRiddleAlreadySolved: the account has already been credited
	// for this riddle.
	ErrRiddleAlreadySolved = errors.New("riddle already solved")

	// ErrWrongAnswer: answer hash mismatch on a riddle submission.
	ErrWrongAnswer = errors.New("wrong answer")
)
