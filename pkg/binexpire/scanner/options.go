// Package scanner lists the configured binary directories and judges each
// file as stale, OK, or a stub. Scanning never mutates the filesystem.
package scanner

import (
	"time"

	"github.com/jamesainslie/binexpire/pkg/binexpire/classify"
	"github.com/jamesainslie/binexpire/pkg/binexpire/timesource"
	"github.com/jamesainslie/binexpire/pkg/binexpire/types"
)

// DefaultThreshold is used when Options.Threshold is negative.
var DefaultThreshold = types.Days(90)

// Options configures a scan.
type Options struct {
	// Dirs are the directories to list. Missing directories are skipped.
	Dirs []string

	// Threshold is the age beyond which a normal binary is stale.
	Threshold time.Duration

	// Classifier decides Normal / Stub / Ignored. Nil uses an empty ignore list.
	Classifier *classify.Classifier

	// Policy selects access or modification time.
	Policy timesource.Policy

	// Tolerance for access-time contamination. Zero uses timesource.DefaultTolerance.
	Tolerance time.Duration

	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}

// Validate applies defaults for unset fields.
func (o *Options) Validate() error {
	if o.Threshold < 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Classifier == nil {
		c, err := classify.New(nil)
		if err != nil {
			return err
		}
		o.Classifier = c
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return nil
}
