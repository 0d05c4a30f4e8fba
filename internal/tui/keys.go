package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds all key bindings for the TUI.
type keyMap struct {
	Interrupt key.Binding
}

// keys is the global key map. The view takes no other input; raw mode
// swallows the terminal's SIGINT, so ctrl+c is handled here.
var keys = keyMap{
	Interrupt: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "abort"),
	),
}
