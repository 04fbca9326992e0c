// Package clock centralises the engine's time source so that expiry and
// revocation logic can be tested deterministically.
package clock

import "time"

// NowFunc returns the current time. Tests override it to freeze or advance
// the clock.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }
