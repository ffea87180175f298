package iso8583

import (
	"errors"
	"fmt"

	"github.com/gregLibert/iso8583/pkg/tlv"
)

// Error kinds. Every error returned by this package wraps exactly one of them,
// usually inside a *FieldError naming the data element being processed.
var (
	// ErrConfig reports a layout problem: unknown index, index outside the
	// field domain, contradictory options.
	ErrConfig = errors.New("iso8583: configuration error")
	// ErrOverflow reports a value longer than its field or length class allows.
	ErrOverflow = errors.New("iso8583: value overflow")
	// ErrPadding reports a short value on a field without alignment, or a
	// padding result that does not reach the expected width.
	ErrPadding = errors.New("iso8583: ambiguous padding")
	// ErrTruncated reports input ending before a field is complete.
	ErrTruncated = errors.New("iso8583: truncated data")
	// ErrUnsupported reports an encoding, length class or TLV length form
	// the codec does not implement.
	ErrUnsupported = errors.New("iso8583: unsupported encoding")
	// ErrInvalidValue reports a value that cannot be represented by its
	// encoding, such as a non hex digit in a BCD field.
	ErrInvalidValue = errors.New("iso8583: invalid value")
	// ErrTrailingData reports bytes left over after the last data element.
	ErrTrailingData = errors.New("iso8583: trailing data")
)

// FieldError locates an error on a data element or sub-element.
type FieldError struct {
	Path string // "4", "MTI", "60.2", "55.9F26"
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Path, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// fieldError wraps err with path unless a deeper element already claimed it.
func fieldError(path string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return err
	}
	return &FieldError{Path: path, Err: err}
}

// tlvError maps the tlv package sentinels onto this package's kinds.
func tlvError(err error) error {
	switch {
	case errors.Is(err, tlv.ErrTruncated):
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	case errors.Is(err, tlv.ErrLengthForm):
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	case errors.Is(err, tlv.ErrValueTooLong):
		return fmt.Errorf("%w: %w", ErrOverflow, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
}
