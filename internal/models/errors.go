package models

import "fmt"

// UnknownSourceError reports a source tag outside the supported provider set.
// It signals a programming error (a new provider without an adapter) and is
// the only error the normalization layer ever returns.
type UnknownSourceError struct {
	Source Source
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown source: %s", e.Source)
}
