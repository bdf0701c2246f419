package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next       key.Binding
	Prev       key.Binding
	ToggleType key.Binding
	Left       key.Binding
	Right      key.Binding
	Up         key.Binding
	Down       key.Binding
	Submit     key.Binding
	Delete     key.Binding
	Theme      key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding

	Yes key.Binding
	No  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		ToggleType: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "type")),
		Left:       key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "choose")),
		Right:      key.NewBinding(key.WithKeys("right")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "select")),
		Down:       key.NewBinding(key.WithKeys("down", "j")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Theme:      key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "theme")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),

		Yes: key.NewBinding(key.WithKeys("y", "enter")),
		No:  key.NewBinding(key.WithKeys("n", "esc")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.ToggleType, k.Left, k.Submit, k.Up, k.Delete, k.Theme, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.ToggleType, k.Left, k.Submit},
		{k.Up, k.Delete, k.Theme, k.Quit},
	}
}
