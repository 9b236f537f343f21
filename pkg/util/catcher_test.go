package util

import (
	"errors"
	"testing"

	"gotest.tools/assert"
)

func TestCatchErrsRecoversPanics(t *testing.T) {
	err := CatchErrs(func() error {
		Throw(errors.New("hci gone"))
		return nil
	})
	assert.ErrorContains(t, err, "hci gone")

	err = CatchErrs(func() error {
		panic("not an error value")
	})
	assert.ErrorContains(t, err, "not an error value")
}

func TestCatchErrsPassesThrough(t *testing.T) {
	assert.NilError(t, CatchErrs(func() error { return nil }))
	assert.ErrorContains(t, CatchErrs(func() error { return errors.New("plain") }), "plain")
}

func TestTryCatchBlockFinally(t *testing.T) {
	finally := false
	TryCatchBlock{
		Try:     func() {},
		Finally: func() { finally = true },
	}.Do()
	assert.Assert(t, finally)
}

func TestSetLogLevel(t *testing.T) {
	assert.NilError(t, SetLogLevel("debug"))
	assert.Equal(t, Log.GetLevel().String(), "debug")
	assert.Assert(t, SetLogLevel("loud") != nil)
	assert.NilError(t, SetLogLevel("info"))
}
