package engine

// Clock accumulates logic time in seconds. It only advances while started.
type Clock struct {
	running bool
	elapsed float64
}

// NewClock returns a stopped clock at zero.
func NewClock() *Clock {
	return &Clock{}
}

// Start starts the clock and resets elapsed time.
func (c *Clock) Start() {
	c.running = true
	c.elapsed = 0
}

// Stop stops the clock. Elapsed time is kept.
func (c *Clock) Stop() {
	c.running = false
}

// Advance adds dt seconds. Has no effect on stopped clocks.
func (c *Clock) Advance(dt float64) {
	if c.running && dt > 0 {
		c.elapsed += dt
	}
}

// Running reports whether the clock is started.
func (c *Clock) Running() bool { return c.running }

// Elapsed returns the seconds accumulated since Start.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}
