package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Back      key.Binding
	PrevSent  key.Binding
	NextSent  key.Binding
	Chapter   key.Binding
	Reset     key.Binding
	Save      key.Binding
	Copy      key.Binding
	Bank      key.Binding
	Trainer   key.Binding
	Stats     key.Binding
	Settings  key.Binding
	Account   key.Binding
	Library   key.Binding
	Help      key.Binding
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Delete    key.Binding
	Search    key.Binding
	Export    key.Binding
	Flip      key.Binding
	GotIt     key.Binding
	Learning  key.Binding
	Restart   key.Binding
	StudyNext key.Binding
	StudyPrev key.Binding
	TransNext key.Binding
	TransPrev key.Binding
	Tab       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		PrevSent:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev sentence")),
		NextSent:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next sentence")),
		Chapter:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next chapter")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save word")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Bank:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "word bank")),
		Trainer:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "trainer")),
		Stats:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "stats")),
		Settings:  key.NewBinding(key.WithKeys(","), key.WithHelp(",", "languages")),
		Account:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "account")),
		Library:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "library")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Delete:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Export:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export csv")),
		Flip:      key.NewBinding(key.WithKeys(" ", "f"), key.WithHelp("space", "flip")),
		GotIt:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "got it")),
		Learning:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "still learning")),
		Restart:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		StudyNext: key.NewBinding(key.WithKeys("]"), key.WithHelp("[/]", "study language")),
		StudyPrev: key.NewBinding(key.WithKeys("[")),
		TransNext: key.NewBinding(key.WithKeys("}"), key.WithHelp("{/}", "translation language")),
		TransPrev: key.NewBinding(key.WithKeys("{")),
		Tab:       key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch field")),
	}
}

// readerKeys is the help shown on the reading screen.
type readerKeys struct{ k keyMap }

func (r readerKeys) ShortHelp() []key.Binding {
	return []key.Binding{r.k.Save, r.k.Bank, r.k.Settings, r.k.Help, r.k.Quit}
}

func (r readerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{r.k.Up, r.k.Down, r.k.PrevSent, r.k.NextSent, r.k.Chapter, r.k.Reset},
		{r.k.Save, r.k.Copy, r.k.StudyNext, r.k.TransNext, r.k.Back},
		{r.k.Bank, r.k.Trainer, r.k.Stats, r.k.Library, r.k.Account, r.k.Quit},
	}
}

// listKeys is the help shown on the word bank and library screens.
type listKeys struct {
	k      keyMap
	extras []key.Binding
}

func (l listKeys) ShortHelp() []key.Binding {
	return append([]key.Binding{l.k.Up, l.k.Down}, append(l.extras, l.k.Back)...)
}

func (l listKeys) FullHelp() [][]key.Binding { return [][]key.Binding{l.ShortHelp()} }

type trainerKeys struct{ k keyMap }

func (t trainerKeys) ShortHelp() []key.Binding {
	return []key.Binding{t.k.Flip, t.k.GotIt, t.k.Learning, t.k.Restart, t.k.Back}
}

func (t trainerKeys) FullHelp() [][]key.Binding { return [][]key.Binding{t.ShortHelp()} }
