package main

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the viewer's key bindings.
type keyMap struct {
	Down        key.Binding
	Up          key.Binding
	HalfDown    key.Binding
	HalfUp      key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Toggle      key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Follow      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev"),
		),
		HalfDown: key.NewBinding(
			key.WithKeys("J", "ctrl+d", "pgdown"),
			key.WithHelp("J", "half page down"),
		),
		HalfUp: key.NewBinding(
			key.WithKeys("K", "ctrl+u", "pgup"),
			key.WithHelp("K", "half page up"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("tab", "enter", " "),
			key.WithHelp("tab", "fold"),
		),
		ExpandAll: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "expand all"),
		),
		CollapseAll: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "collapse all"),
		),
		Follow: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "follow"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Toggle, k.Bottom, k.Follow, k.Help, k.Quit}
}

// FullHelp returns all bindings for the expanded help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.HalfDown, k.HalfUp},
		{k.Top, k.Bottom, k.Follow},
		{k.Toggle, k.ExpandAll, k.CollapseAll},
		{k.Help, k.Quit},
	}
}
