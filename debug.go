package shelf

import (
	"fmt"
	"os"
)

// SetDebugMode enables or disables debug mode. When enabled, input the engine
// silently ignores (unknown drag ids, failed store writes, forced drag ends)
// is reported on stderr.
func (c *Canvas) SetDebugMode(enabled bool) {
	c.debug = enabled
	logf := func(string, ...any) {}
	if enabled {
		logf = c.debugLog
	}
	c.grid.logf = logf
	c.stickers.logf = logf
}

// debugLog prints one "[shelf]" line when debug mode is on.
func (c *Canvas) debugLog(format string, args ...any) {
	if !c.debug {
		return
	}
	out := c.debugOut
	if out == nil {
		out = os.Stderr
	}
	_, _ = fmt.Fprintf(out, "[shelf] "+format+"\n", args...)
}
