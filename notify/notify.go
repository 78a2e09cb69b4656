// Package notify surfaces user-visible messages and navigation requests
// produced by the client, independent of how they are rendered.
package notify

import "context"

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notifier shows short-lived messages to the user.
type Notifier interface {
	ShowSuccess(message string)
	ShowError(message string)
	ShowWarning(message string)
	ShowInfo(message string)
}

// Navigator moves the user to another part of the application.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	f(ctx, path)
}

// Discard drops every message and navigation.
var Discard discard

type discard struct{}

func (discard) ShowSuccess(string)               {}
func (discard) ShowError(string)                 {}
func (discard) ShowWarning(string)               {}
func (discard) ShowInfo(string)                  {}
func (discard) Navigate(context.Context, string) {}
