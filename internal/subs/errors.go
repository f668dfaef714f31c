package subs

import "errors"

// ErrClientGone indicates the client's transport is closed and the client
// should be removed from the registry.
var ErrClientGone = errors.New("client gone")
