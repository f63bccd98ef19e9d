// Package subxerr defines the typed error kinds shared across SubX's core
// packages, matching the error-recovery table in the specification.
package subxerr

import "errors"

// Kind identifies one of the recognized failure categories. Callers should
// use errors.Is against the Sentinel of the kind they care about rather than
// switching on Kind directly, since a Kind may be wrapped alongside
// additional context.
type Kind string

const (
	KindConfigInvalid     Kind = "config.invalid"
	KindIoNotFound        Kind = "io.not_found"
	KindIoPermission      Kind = "io.permission_denied"
	KindSubtitleParse     Kind = "subtitle.parse"
	KindSubtitleEncoding  Kind = "subtitle.encoding"
	KindFormatAmbiguous   Kind = "format.ambiguous"
	KindFormatUnsupported Kind = "format.unsupported"
	KindAudioDecodeFatal  Kind = "audio.decode_fatal"
	KindAudioEmpty        Kind = "audio.empty"
	KindVadNoSpeech       Kind = "vad.no_speech"
	KindOracleTransient   Kind = "oracle.transient"
	KindOracleProtocol    Kind = "oracle.protocol"
	KindCacheCorrupt      Kind = "cache.corrupt"
	KindTimeout           Kind = "timeout"
	KindCancelled         Kind = "cancelled"
)

// Error wraps an underlying cause with a stable Kind so callers can recover
// from a failure category with errors.Is, regardless of the message text.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, subxerr.Sentinel(KindX)) work: two *Error values
// compare equal by Kind alone.
func (e *Error) Is(target error) bool {
	var o *Error
	if errors.As(target, &o) {
		return o.Kind == e.Kind
	}
	return false
}

// New builds an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error of the given kind around an existing error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Sentinel returns a comparison value usable with errors.Is to test whether
// an error belongs to a given Kind, irrespective of message or wrapped cause.
func Sentinel(kind Kind) error {
	return &Error{Kind: kind}
}

// Retryable reports whether a failure of this kind is worth retrying by an
// upstream caller. The oracle adapter's retry policy does not call it; it
// applies its own predicate.
func (k Kind) Retryable() bool {
	return k == KindOracleTransient || k == KindTimeout
}
