package memocache

import (
	"errors"
	"fmt"
)

var (
	ErrClosed       = errors.New("memocache: closed")
	ErrNilCompute   = errors.New("memocache: nil compute func")
	ErrComputePanic = errors.New("memocache: compute panicked")
)

// ComputeError is returned by Fetch when the compute function failed.
// Every caller coalesced onto the failed computation receives it.
type ComputeError struct {
	Key string
	Err error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("memocache: compute %q: %v", e.Key, e.Err)
}

func (e *ComputeError) Unwrap() error { return e.Err }

type ForgetError struct {
	Key     string
	BumpErr error
	DelErr  error
}

func (e *ForgetError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("forget %q failed: gen bump and delete failed: bump=%v; delete=%v",
			e.Key, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("forget %q: gen bump failed: %v", e.Key, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("forget %q: delete failed: %v", e.Key, e.DelErr)
	default:
		return fmt.Sprintf("forget %q: unknown error", e.Key)
	}
}

func (e *ForgetError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
