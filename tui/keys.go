package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down, Left, Right key.Binding

	Toggle    key.Binding
	Play      key.Binding
	Stop      key.Binding
	Step      key.Binding
	PrevBlock key.Binding
	NextBlock key.Binding
	AddBlock  key.Binding
	DropBlock key.Binding
	Clear     key.Binding
	ClearAll  key.Binding

	Mute     key.Binding
	Audition key.Binding
	Sound    key.Binding
	VolUp    key.Binding
	VolDown  key.Binding
	Faster   key.Binding
	Slower   key.Binding

	Demo   key.Binding
	Save   key.Binding
	Load   key.Binding
	Export key.Binding
	Pads   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "channel up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "channel down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "step left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "step right")),

		Toggle:    key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "toggle step")),
		Play:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play/pause")),
		Stop:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Step:      key.NewBinding(key.WithKeys("."), key.WithHelp(".", "single step")),
		PrevBlock: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev block")),
		NextBlock: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next block")),
		AddBlock:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "add block")),
		DropBlock: key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "remove block")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear block")),
		ClearAll:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear all")),

		Mute:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		Audition: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "audition")),
		Sound:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next sound")),
		VolUp:    key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "volume up")),
		VolDown:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "volume down")),
		Faster:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "tempo up")),
		Slower:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "tempo down")),

		Demo:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "next demo")),
		Save:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "save")),
		Load:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open latest")),
		Export: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export .mid")),
		Pads:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "pads preview")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Play, k.Stop, k.PrevBlock, k.NextBlock, k.Mute, k.Demo, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Toggle},
		{k.Play, k.Stop, k.Step, k.Faster, k.Slower},
		{k.PrevBlock, k.NextBlock, k.AddBlock, k.DropBlock, k.Clear, k.ClearAll},
		{k.Mute, k.Audition, k.Sound, k.VolUp, k.VolDown},
		{k.Demo, k.Save, k.Load, k.Export, k.Pads, k.Help, k.Quit},
	}
}
