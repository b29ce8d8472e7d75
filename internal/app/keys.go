package app

import (
	"strings"

	"charm.land/bubbles/v2/key"
)

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Unfocus     key.Binding
	Compose     key.Binding
	Transfer    key.Binding
	Close       key.Binding
	Delete      key.Binding
	Filter      key.Binding
	Refresh     key.Binding
	CopyPhone   key.Binding
	CopyMessage key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next")),
		Unfocus:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "unselect")),
		Compose:     key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("enter", "reply")),
		Transfer:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "take over")),
		Close:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "close")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Filter:      key.NewBinding(key.WithKeys("tab", "f"), key.WithHelp("tab", "filter")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		CopyPhone:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy phone")),
		CopyMessage: key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy last msg")),
		ScrollUp:    key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll")),
		ScrollDown:  key.NewBinding(key.WithKeys("pgdown")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) helpLine() string {
	bindings := []key.Binding{k.Up, k.Down, k.Compose, k.Transfer, k.Close, k.Delete, k.Filter, k.Refresh, k.CopyPhone, k.Quit}
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		if help.Key == "" {
			continue
		}
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, " · ")
}

const composeHelp = "enter send · esc keep draft"
