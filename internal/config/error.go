package config

import "errors"

// ErrNoWorkspace reports that no usable workspace is configured.
var ErrNoWorkspace = errors.New("config: no workspace configured")

type ConfigInitError struct {
	msg string
}

func (e *ConfigInitError) Error() string {
	return e.msg
}

// Unwrap lets errors.Is match ErrNoWorkspace.
func (e *ConfigInitError) Unwrap() error {
	return ErrNoWorkspace
}
