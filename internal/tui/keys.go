package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Choose    key.Binding
	Inventory key.Binding
	Menu      key.Binding
	Stats     key.Binding
	Save      key.Binding
	Reset     key.Binding
	Drop      key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Choose:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter/1-9", "choose")),
	Inventory: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "inventory")),
	Menu:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
	Stats:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stats")),
	Save:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save")),
	Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	Drop:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "drop item")),
	Confirm:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
	Cancel:    key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "no")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Choose, k.Inventory, k.Menu, k.Stats, k.Drop, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Choose},
		{k.Inventory, k.Menu, k.Stats},
		{k.Save, k.Reset, k.Drop, k.Quit},
	}
}
