package commands

import "errors"

// ErrNilValue is returned by writes carrying a nil value; nil means "absent".
var ErrNilValue = errors.New("commands: nil value")
