// Package metaerr decorates errors with key-value metadata that can be
// attached to structured log records without becoming part of the error
// message itself.
package metaerr

import "errors"

type metaError struct {
	err  error
	meta []any
}

func (e *metaError) Error() string {
	return e.err.Error()
}

func (e *metaError) Unwrap() error {
	return e.err
}

// WithMetadata wraps err with the given key-value pairs.
// If err is nil, it returns nil.
func WithMetadata(err error, keyvals ...any) error {
	if err == nil {
		return nil
	}
	return &metaError{
		err:  err,
		meta: keyvals,
	}
}

// GetMetadata collects the key-value pairs of all metadata-carrying errors
// in err's chain, outermost first.
func GetMetadata(err error) []any {
	var meta []any
	for err != nil {
		var merr *metaError
		if !errors.As(err, &merr) {
			break
		}
		meta = append(meta, merr.meta...)
		err = merr.Unwrap()
	}
	return meta
}
