package errors

import (
	"testing"
)

func TestSentinelWrapping(t *testing.T) {
	err := NewDataInconsistencyError("vertex table has %d rows, edge table references %d", 5, 9)
	if !Is(err, ErrDataInconsistency) {
		t.Errorf("wrapped error does not match ErrDataInconsistency")
	}
	if Is(err, ErrConfiguration) {
		t.Errorf("wrapped error must not match ErrConfiguration")
	}

	outer := Wrap(err, "reload failed")
	if !IsDataInconsistencyError(outer) {
		t.Errorf("outer wrap lost the sentinel")
	}
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("palette for %q is empty", "coda:color")
	if !IsConfigurationError(err) {
		t.Errorf("expected a configuration error")
	}
	if IsConfigurationError(nil) {
		t.Errorf("nil must not be a configuration error")
	}
}

func TestStaleEpochIsDistinct(t *testing.T) {
	for _, other := range []error{ErrConfiguration, ErrDataInconsistency, ErrUndetectedColumns, ErrNotFound} {
		if Is(ErrStaleEpoch, other) {
			t.Errorf("ErrStaleEpoch must not match %v", other)
		}
	}
}
