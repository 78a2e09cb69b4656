package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

var (
	_ Notifier  = (*Console)(nil)
	_ Navigator = (*Console)(nil)
)

// Console prints toasts and navigation notices to a terminal.
type Console struct {
	out   io.Writer
	color bool
	lock  sync.Mutex
}

func NewConsole(out io.Writer, color bool) *Console {
	return &Console{out: out, color: color}
}

func (c *Console) ShowSuccess(message string) { c.show(LevelSuccess, message) }
func (c *Console) ShowError(message string)   { c.show(LevelError, message) }
func (c *Console) ShowWarning(message string) { c.show(LevelWarning, message) }
func (c *Console) ShowInfo(message string)    { c.show(LevelInfo, message) }

func (c *Console) Navigate(_ context.Context, path string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.color {
		fmt.Fprintf(c.out, "%s→ %s%s\n", Gray, path, ResetColor)
		return
	}
	fmt.Fprintf(c.out, "-> %s\n", path)
}

func (c *Console) show(level Level, message string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.color {
		fmt.Fprintf(c.out, "%s %s %s %s\n", levelColors[level], levelIcons[level], ResetColor, message)
		return
	}
	fmt.Fprintf(c.out, "[%s] %s\n", level, message)
}
