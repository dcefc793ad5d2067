package admission

import (
	"fmt"
	"os"
	"time"

	"subweave/internal/config"
	"subweave/internal/jobfiles"
)

// Skip reasons reported by the gate, in predicate order.
const (
	ReasonDoneExists      = "done_exists"
	ReasonArchived        = "archived"
	ReasonSourceSRTExists = "source_srt_exists"
	ReasonLockExists      = "lock_exists"
	ReasonASRFailedFatal  = "asr_failed_fatal"
	ReasonASRFailedRecent = "asr_failed_recent"
	ReasonUnstable        = "unstable"
	ReasonLockRace        = "lock_race"
)

// Decision is the gate's verdict for one path.
type Decision struct {
	Admit  bool
	Reason string
}

func skip(reason string) Decision { return Decision{Reason: reason} }

// Gate evaluates admission for dequeued paths. The dwell sleeper is
// injectable so tests run without waiting.
type Gate struct {
	cfg         config.Admission
	maxFailures int
	cooldown    time.Duration
	sleep       func(time.Duration)
}

// NewGate builds a gate from the admission and recognition sections of the
// configuration snapshot.
func NewGate(cfg *config.Config) *Gate {
	return &Gate{
		cfg:         cfg.Admission,
		maxFailures: cfg.ASR.MaxFailures,
		cooldown:    time.Duration(cfg.ASR.FailCooldownSeconds) * time.Second,
		sleep:       time.Sleep,
	}
}

// WithSleeper replaces the stability dwell sleep, for tests.
func (g *Gate) WithSleeper(sleep func(time.Duration)) { g.sleep = sleep }

// Admit runs every predicate and, when all pass, acquires the lock. The
// caller owns the lock on an admitted path and must release it when the job
// finishes.
func (g *Gate) Admit(naming jobfiles.Naming, overrides jobfiles.Overrides) (Decision, error) {
	if jobfiles.Exists(naming.DonePath()) && !overrides.ForceOnce {
		return skip(ReasonDoneExists), nil
	}
	if jobfiles.Exists(naming.ArchivedPath()) {
		return skip(ReasonArchived), nil
	}
	// A subtitle shipped next to the source makes work redundant when
	// outputs live elsewhere; co-located outputs are our own product.
	if !g.cfg.OutputBesideVideo {
		sibling := jobfiles.ResolveNaming(naming.VideoPath, "", true, naming.Suffix)
		if jobfiles.Exists(sibling.SourceSRTPath()) {
			return skip(ReasonSourceSRTExists), nil
		}
	}

	lockTTL := time.Duration(g.cfg.LockTTLSeconds) * time.Second
	if age, ok := jobfiles.MarkerAge(naming.LockPath()); ok {
		if lockTTL <= 0 || age <= lockTTL {
			return skip(ReasonLockExists), nil
		}
		if err := jobfiles.ReleaseLock(naming.LockPath()); err != nil {
			return Decision{}, fmt.Errorf("remove stale lock: %w", err)
		}
	}

	if failure, ok := jobfiles.ReadASRFailure(naming.ASRFailedPath()); ok {
		if failure.Fatal || (g.maxFailures > 0 && failure.Count >= g.maxFailures) {
			return skip(ReasonASRFailedFatal), nil
		}
		if age, present := jobfiles.MarkerAge(naming.ASRFailedPath()); present && age < g.cooldown {
			return skip(ReasonASRFailedRecent), nil
		}
		if err := jobfiles.ClearASRFailure(naming.ASRFailedPath()); err != nil {
			return Decision{}, err
		}
	}

	if !g.stable(naming.VideoPath) {
		return skip(ReasonUnstable), nil
	}

	acquired, err := jobfiles.AcquireLock(naming.LockPath())
	if err != nil {
		return Decision{}, err
	}
	if !acquired {
		return skip(ReasonLockRace), nil
	}
	return Decision{Admit: true}, nil
}

// stable reports whether the file meets the size floor and has stopped
// changing across the dwell window.
func (g *Gate) stable(path string) bool {
	before, err := os.Stat(path)
	if err != nil {
		return false
	}
	if before.Size() < g.cfg.MinBytes {
		return false
	}
	dwell := time.Duration(g.cfg.StabilityDwellMS) * time.Millisecond
	if dwell > 0 {
		g.sleep(dwell)
	}
	after, err := os.Stat(path)
	if err != nil {
		return false
	}
	return after.Size() == before.Size() && after.ModTime().Equal(before.ModTime())
}
