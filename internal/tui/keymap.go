package tui

import "charm.land/bubbles/v2/key"

// keyMap holds the list and form bindings.
type keyMap struct {
	quit         key.Binding
	reload       key.Binding
	toggleHelp   key.Binding
	moveUp       key.Binding
	moveDown     key.Binding
	toggleDone   key.Binding
	toggleEdit   key.Binding
	deleteTask   key.Binding
	hideDone     key.Binding
	copyTask     key.Binding
	details      key.Binding
	nextFocus    key.Binding
	prevFocus    key.Binding
	cancel       key.Binding
	forceQuit    key.Binding
	switchField  key.Binding
	confirmEdit  key.Binding
	cancelEdit   key.Binding
	submitCreate key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:         key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		toggleDone:   key.NewBinding(key.WithKeys("space", "x"), key.WithHelp("space/x", "toggle done")),
		toggleEdit:   key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e/enter", "edit")),
		deleteTask:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		hideDone:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "show/hide done")),
		copyTask:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		details:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "details")),
		nextFocus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next focus")),
		prevFocus:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev focus")),
		cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to list")),
		forceQuit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		switchField:  key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch field")),
		confirmEdit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		cancelEdit:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel edit")),
		submitCreate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add task")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.toggleDone, k.toggleEdit, k.deleteTask, k.hideDone, k.nextFocus, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveUp, k.moveDown, k.toggleDone, k.toggleEdit, k.deleteTask},
		{k.hideDone, k.reload, k.copyTask, k.details, k.toggleHelp, k.quit},
		{k.nextFocus, k.prevFocus, k.submitCreate, k.cancel},
		{k.switchField, k.confirmEdit, k.cancelEdit},
	}
}

// editHelp lists the bindings active while a row is being edited.
type editHelp struct{ keys keyMap }

func (e editHelp) ShortHelp() []key.Binding {
	return []key.Binding{e.keys.switchField, e.keys.confirmEdit, e.keys.cancelEdit, e.keys.forceQuit}
}

func (e editHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{e.ShortHelp()}
}
