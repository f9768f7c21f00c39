package vm

import (
	"time"

	"github.com/mna/glox/lang/value"
)

// nativeClock implements clock(), returning the number of seconds since
// the Unix epoch as a Lox number, grounded on the reference
// implementation's native clock().
func nativeClock(_ []value.Value) (value.Value, error) {
	return value.Double(float64(time.Now().UnixNano()) / 1e9), nil
}
