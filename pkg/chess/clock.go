// Package chess defines the game clock
package chess

import (
	"fmt"
	"sync"
	"time"

	"github.com/tecu23/chess-arena/internal/color"
)

// TimeControl defines the time settings for a game
type TimeControl struct {
	WhiteSeconds int64 // Initial time in seconds
	BlackSeconds int64
}

// NewTimeControl gives both sides the same budget
func NewTimeControl(seconds int64) TimeControl {
	return TimeControl{WhiteSeconds: seconds, BlackSeconds: seconds}
}

// ClockState is either stopped or running for one color
type ClockState string

// Clock states
const (
	Stopped ClockState = "stopped"
	Running ClockState = "running"
)

// Clock manages the chess clock for both players. Only the active color is
// ever decremented and values never go below zero.
type Clock struct {
	whiteSeconds int64
	blackSeconds int64

	activeColor color.Color
	state       ClockState

	// server driven timing
	mark  time.Time
	carry time.Duration

	mutex sync.RWMutex
}

// ClockTick is a snapshot of both clocks
type ClockTick struct {
	White       int64
	Black       int64
	ActiveColor color.Color
}

// NewClock creates a new stopped chess clock with the given time controls
func NewClock(tc TimeControl) *Clock {
	return &Clock{
		whiteSeconds: clamp(tc.WhiteSeconds),
		blackSeconds: clamp(tc.BlackSeconds),
		activeColor:  color.White,
		state:        Stopped,
	}
}

// Start runs the clock for the given color
func (c *Clock) Start(active color.Color, now time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.activeColor = active
	c.state = Running
	c.mark = now
	c.carry = 0
}

// Stop stops the clock, charging elapsed time to the active side first
func (c *Clock) Stop(now time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != Running {
		return
	}

	c.advance(now)
	c.state = Stopped
}

// Halt stops the clock without charging time. Used when clients own the countdown.
func (c *Clock) Halt() {
	c.mutex.Lock()
	c.state = Stopped
	c.mutex.Unlock()
}

// Switch hands the move to the given color. Elapsed time is charged to the
// side that just moved. A stopped clock is left stopped.
func (c *Clock) Switch(to color.Color, now time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != Running {
		return
	}

	c.advance(now)
	c.activeColor = to
	c.mark = now
	c.carry = 0
}

// Pass hands the move to the given color without charging anyone. Used when
// clients own the countdown.
func (c *Clock) Pass(to color.Color, now time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != Running {
		return
	}

	c.activeColor = to
	c.mark = now
	c.carry = 0
}

// Advance charges whole elapsed seconds to the running color and reports
// whether that color has run out of time.
func (c *Clock) Advance(now time.Time) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != Running {
		return false
	}

	c.advance(now)

	return c.remaining(c.activeColor) == 0
}

func (c *Clock) advance(now time.Time) {
	elapsed := now.Sub(c.mark) + c.carry
	c.mark = now
	if elapsed <= 0 {
		c.carry = 0
		return
	}

	secs := int64(elapsed / time.Second)
	c.carry = elapsed % time.Second

	if c.activeColor == color.White {
		c.whiteSeconds = clamp(c.whiteSeconds - secs)
	} else {
		c.blackSeconds = clamp(c.blackSeconds - secs)
	}
}

// Report stores a client reported value for the running color. Values above
// the stored one are ignored so the total never grows. The other color is untouched.
func (c *Clock) Report(white, black int64) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != Running {
		return false
	}

	if c.activeColor == color.White {
		c.whiteSeconds = lower(c.whiteSeconds, white)
	} else {
		c.blackSeconds = lower(c.blackSeconds, black)
	}

	return c.remaining(c.activeColor) == 0
}

// Settle applies a snapshot sent along with a move. Either side may only go down.
func (c *Clock) Settle(white, black int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.whiteSeconds = lower(c.whiteSeconds, white)
	c.blackSeconds = lower(c.blackSeconds, black)
}

// Expire zeroes the given color's clock
func (c *Clock) Expire(col color.Color) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if col == color.White {
		c.whiteSeconds = 0
	} else {
		c.blackSeconds = 0
	}
}

// GetRemainingTime returns the current remaining time for both players
func (c *Clock) GetRemainingTime() ClockTick {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return ClockTick{
		White:       c.whiteSeconds,
		Black:       c.blackSeconds,
		ActiveColor: c.activeColor,
	}
}

// Remaining returns the seconds left for one color
func (c *Clock) Remaining(col color.Color) int64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.remaining(col)
}

func (c *Clock) remaining(col color.Color) int64 {
	if col == color.White {
		return c.whiteSeconds
	}
	return c.blackSeconds
}

// State returns the clock state and the color it runs for
func (c *Clock) State() (ClockState, color.Color) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.state, c.activeColor
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// lower returns the reported value when it does not exceed current
func lower(current, reported int64) int64 {
	reported = clamp(reported)
	if reported < current {
		return reported
	}
	return current
}

// FormatClockTime formats seconds as m:ss (e.g., "1:30")
func FormatClockTime(seconds int64) string {
	seconds = clamp(seconds)

	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
