package config

import "errors"

var ErrInvalidConfig = errors.New("config: invalid")
