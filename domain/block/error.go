package block

// These constants are used to identify a specific CodecError.
var (
	// ErrMalformedInput indicates that a binary or hex encoding could not
	// be decoded: it is empty, truncated, carries a non-canonical length
	// prefix, or contains a transaction record that does not decode.
	ErrMalformedInput = newCodecError("ErrMalformedInput")

	// ErrInvalidArgument indicates that a block could not be constructed
	// from the given argument: its kind is not recognized, or a display
	// object is inconsistent with itself.
	ErrInvalidArgument = newCodecError("ErrInvalidArgument")
)

// CodecError identifies a class of failure of the block codec. Errors are
// returned wrapped around one of the exported sentinels, so callers should
// match them with errors.Is, or extract the class with errors.As.
type CodecError struct {
	message string
}

func (e CodecError) Error() string {
	return e.message
}

func newCodecError(message string) CodecError {
	return CodecError{message: message}
}
