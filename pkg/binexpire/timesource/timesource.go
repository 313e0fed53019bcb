// Package timesource derives a trustworthy "last used" timestamp for a file.
//
// Access times are unreliable: filesystems mount with noatime or relatime,
// Windows updates them lazily, and listing a directory can itself bump them.
// A Resolver therefore works from a Policy chosen once at startup and falls
// back to modification time whenever an access time looks contaminated by
// the scan that is reading it.
package timesource

import (
	"runtime"
	"time"

	"github.com/jamesainslie/binexpire/pkg/binexpire/types"
)

// DefaultTolerance is how far past the scan start an access time may lie
// before it is treated as written by the scan itself.
const DefaultTolerance = 2 * time.Second

// Batch heuristic parameters. When at least MinBatchSamples files report an
// access time and at least BatchRatio of them fall inside the scan window,
// the whole batch is considered contaminated.
const (
	MinBatchSamples = 10
	BatchRatio      = 0.80
)

// Times holds the raw timestamps read for a file. Zero values mean unavailable.
type Times struct {
	Accessed time.Time
	Modified time.Time
}

// Policy selects which timestamp the Resolver prefers.
type Policy int

const (
	// PolicyModTime always uses the modification time.
	PolicyModTime Policy = iota
	// PolicyAccessTime prefers the access time, guarded by contamination checks.
	PolicyAccessTime
)

// String returns the string representation of the policy.
func (p Policy) String() string {
	if p == PolicyAccessTime {
		return "access-time"
	}
	return "modification-time"
}

// PolicyFor picks the policy for the given platform.
// Access time is opt-in everywhere: windowsUseAccessTime gates it on Windows,
// unixUseAccessTime on every other platform.
func PolicyFor(goos string, windowsUseAccessTime, unixUseAccessTime bool) Policy {
	if goos == "windows" {
		if windowsUseAccessTime {
			return PolicyAccessTime
		}
		return PolicyModTime
	}
	if unixUseAccessTime {
		return PolicyAccessTime
	}
	return PolicyModTime
}

// DetectPolicy picks the policy for the running platform.
func DetectPolicy(windowsUseAccessTime, unixUseAccessTime bool) Policy {
	return PolicyFor(runtime.GOOS, windowsUseAccessTime, unixUseAccessTime)
}

// Resolver turns raw Times into a (timestamp, provenance) pair.
type Resolver struct {
	policy    Policy
	scanStart time.Time
	tolerance time.Duration
}

// NewResolver creates a Resolver for a scan that started at scanStart.
// A non-positive tolerance uses DefaultTolerance.
func NewResolver(policy Policy, scanStart time.Time, tolerance time.Duration) *Resolver {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Resolver{
		policy:    policy,
		scanStart: scanStart,
		tolerance: tolerance,
	}
}

// Policy returns the resolver's policy.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// Resolve returns the last-used timestamp and where it came from.
// When nothing usable is available it returns a zero time and ProvenanceUnknown.
func (r *Resolver) Resolve(t Times) (time.Time, types.Provenance) {
	if r.policy == PolicyAccessTime && r.usableAccess(t.Accessed) {
		return t.Accessed, types.ProvenanceAtime
	}
	return r.ResolveModTime(t)
}

// ResolveModTime resolves ignoring the policy's access-time preference.
// Access time is only used when no modification time exists at all.
func (r *Resolver) ResolveModTime(t Times) (time.Time, types.Provenance) {
	if !t.Modified.IsZero() {
		return t.Modified, types.ProvenanceMtime
	}
	if r.usableAccess(t.Accessed) {
		return t.Accessed, types.ProvenanceAtime
	}
	return time.Time{}, types.ProvenanceUnknown
}

// usableAccess rejects missing access times and ones newer than the scan start
// plus tolerance.
func (r *Resolver) usableAccess(accessed time.Time) bool {
	if accessed.IsZero() {
		return false
	}
	return !accessed.After(r.scanStart.Add(r.tolerance))
}

// BatchContaminated reports whether the access times of a batch look like
// they were written by the scan that ran from the resolver's start to scanEnd.
// Only meaningful under PolicyAccessTime; always false otherwise.
func (r *Resolver) BatchContaminated(accessed []time.Time, scanEnd time.Time) bool {
	if r.policy != PolicyAccessTime {
		return false
	}

	start := r.scanStart.Add(-r.tolerance)
	end := scanEnd.Add(r.tolerance)

	var eligible, inWindow int
	for _, a := range accessed {
		if a.IsZero() {
			continue
		}
		eligible++
		if !a.Before(start) && !a.After(end) {
			inWindow++
		}
	}

	if eligible < MinBatchSamples {
		return false
	}
	return float64(inWindow)/float64(eligible) >= BatchRatio
}
