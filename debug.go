package warpgate

import (
	"log/slog"
	"time"
)

// debugStats holds per-phase frame timing. Only populated when the engine is
// in debug mode.
type debugStats struct {
	frames   int
	tickTime time.Duration
	maxTick  time.Duration
}

func (s *debugStats) record(d time.Duration, inFlight bool) {
	if !inFlight && s.frames == 0 {
		return
	}
	s.frames++
	s.tickTime += d
	if d > s.maxTick {
		s.maxTick = d
	}
}

func (s *debugStats) reset() {
	*s = debugStats{}
}

// SetDebugMode enables phase timing stats and debug-level logging. The level
// of a logger supplied with WithLogger is left alone.
func (e *Engine) SetDebugMode(enabled bool) {
	e.debug = enabled
	e.stats.reset()
	if e.logLevel == nil {
		return
	}
	if enabled {
		e.logLevel.Set(slog.LevelDebug)
	} else {
		e.logLevel.Set(slog.LevelWarn)
	}
}

// DebugMode reports whether debug mode is on.
func (e *Engine) DebugMode() bool {
	return e.debug
}

// debugPhaseChange logs how many frames the finished phase took and how long
// its ticks ran.
func (e *Engine) debugPhaseChange(c PhaseChange) {
	if !e.debug || c.From == PhaseIdle {
		return
	}
	s := e.stats
	var avg time.Duration
	if s.frames > 0 {
		avg = s.tickTime / time.Duration(s.frames)
	}
	e.logger.Debug("phase stats",
		"phase", c.From, "frames", s.frames, "tick_avg", avg, "tick_max", s.maxTick)
	if c.To == PhaseWarp {
		e.logger.Debug("streak field", "particles", e.streaks.Len())
	}
	e.stats.reset()
}
