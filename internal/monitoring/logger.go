package monitoring

import (
	"log"
	"time"

	"github.com/banshee-data/perpl/internal/relpos"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// may be replaced with SetLogger, e.g. to silence output in tests.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// ScanProgress returns a relpos.ProgressFunc that logs how far a neighbour
// scan has got and how long it has been running. label distinguishes runs
// (e.g. "ch1-to-ch2") and may be empty.
func ScanProgress(label string) relpos.ProgressFunc {
	start := time.Now()
	return func(done, total, found int) {
		elapsed := time.Since(start).Truncate(time.Millisecond)
		if label != "" {
			Logf("[%s] found neighbours for localisation %d of %d (%d vectors, %s so far)", label, done, total, found, elapsed)
			return
		}
		Logf("found neighbours for localisation %d of %d (%d vectors, %s so far)", done, total, found, elapsed)
	}
}

// Timed logs the duration of fn under name and returns fn's error.
func Timed(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if err != nil {
		Logf("%s failed after %s: %v", name, time.Since(start).Truncate(time.Millisecond), err)
		return err
	}
	Logf("%s finished in %s", name, time.Since(start).Truncate(time.Millisecond))
	return nil
}
