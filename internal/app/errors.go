package app

import "errors"

var (
	ErrNoScripts     = errors.New("no scripts enabled")
	ErrScriptOptions = errors.New("invalid script options")
)
