package devflake

import (
	"errors"

	"github.com/nxtcoder17/devflake/pkg/platform"
)

var (
	// ErrInvalidDescriptor indicates the descriptor file is malformed or inconsistent
	ErrInvalidDescriptor = errors.New("invalid descriptor")

	// ErrDescriptorNotFound indicates no descriptor file exists in the directory or any parent
	ErrDescriptorNotFound = errors.New("failed to locate your nearest devflake descriptor")

	// ErrUnsupportedPlatform indicates a system outside the descriptor's system list
	ErrUnsupportedPlatform = platform.ErrUnsupportedPlatform
)
