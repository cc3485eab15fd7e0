package types

import (
	"errors"
	"fmt"
)

// ErrGenerationFailed matches every error returned because a generator failed.
var ErrGenerationFailed = errors.New("metadata generation failed")

// GenerationError reports a failed generator run for Key.
// Every caller that was waiting on the same in-flight generation receives it.
type GenerationError struct {
	Key CacheKey
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Key, e.Err)
}

// Unwrap returns the generator's own error.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrGenerationFailed) match.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}
