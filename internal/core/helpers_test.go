package core_test

import "errors"

// asError is a shorthand for errors.As in assertions.
func asError(err error, target any) bool {
	return errors.As(err, target)
}
