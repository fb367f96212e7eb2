package indexer

import "errors"

var errUnexpectedPayload = errors.New("unexpected event payload")
