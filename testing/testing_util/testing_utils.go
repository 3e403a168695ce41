package testing_util

import (
	"reflect"
	"testing"
)

// Assert fails the test immediately when the condition does not hold.
func Assert(t *testing.T, condition bool, msg string, v ...interface{}) {
	t.Helper()
	if !condition {
		t.Fatalf(msg, v...)
	}
}

// Equals fails the test immediately when exp and act differ.
func Equals(t *testing.T, exp, act interface{}) {
	t.Helper()
	if !reflect.DeepEqual(exp, act) {
		t.Fatalf("exp: %#v\n\ngot: %#v", exp, act)
	}
}

// Ok fails the test immediately when err is not nil.
func Ok(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}
}

// Nok fails the test immediately when err is nil.
func Nok(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got none")
	}
}
