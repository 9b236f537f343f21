package util

import (
	"fmt"

	"github.com/pkg/errors"
)

// TryCatchBlock is a try-catch-finally control flow over panics
type TryCatchBlock struct {
	Try     func()
	Catch   func(error)
	Finally func()
}

// Throw panics with up so an enclosing TryCatchBlock can catch it
func Throw(up error) {
	panic(up)
}

// Do executes the block
func (tcf TryCatchBlock) Do() {
	if tcf.Finally != nil {
		defer tcf.Finally()
	}
	if tcf.Catch != nil {
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("%v", r)
				}
				tcf.Catch(errors.Wrap(err, "recovered panic"))
			}
		}()
	}
	tcf.Try()
}

// CatchErrs runs fn and reports a panic inside it as an error.
// Native BLE libraries panic on some hardware faults; callers treat those like any failure.
func CatchErrs(fn func() error) error {
	var err error
	TryCatchBlock{
		Try:   func() { err = fn() },
		Catch: func(e error) { err = e },
	}.Do()
	return err
}
