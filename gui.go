//go:build gui

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/atotto/clipboard"

	"github.com/metcalfc/glossr/internal/identity"
	"github.com/metcalfc/glossr/internal/lookup"
	"github.com/metcalfc/glossr/internal/popover"
	"github.com/metcalfc/glossr/internal/reader"
	"github.com/metcalfc/glossr/internal/selection"
	"github.com/metcalfc/glossr/internal/state"
	"github.com/metcalfc/glossr/internal/vocab"
)

// Popover geometry in device independent pixels.
const (
	popOffset = 10
	popMargin = 8
	popWidth  = 280
)

// tokenWidget draws one token. Whitespace containing newlines renders as
// line breaks.
type tokenWidget struct {
	widget.BaseWidget
	ui     *guiReader
	index  int
	breaks int
	text   *canvas.Text
	bg     *canvas.Rectangle
}

func newTokenWidget(ui *guiReader, tok reader.Token) *tokenWidget {
	t := &tokenWidget{ui: ui, index: tok.Index, bg: canvas.NewRectangle(color.Transparent)}
	label := tok.Text
	if tok.IsSpace() {
		t.breaks = strings.Count(tok.Text, "\n")
		label = " "
		if t.breaks > 0 {
			label = ""
		}
	}
	t.text = canvas.NewText(label, theme.Color(theme.ColorNameForeground))
	t.text.TextSize = ui.fontSize
	t.ExtendBaseWidget(t)
	return t
}

func (t *tokenWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(t.bg, t.text))
}

func (t *tokenWidget) setSelected(on bool) {
	var c color.Color = color.Transparent
	if on {
		c = theme.Color(theme.ColorNameSelection)
	}
	if t.bg.FillColor == c {
		return
	}
	t.bg.FillColor = c
	t.bg.Refresh()
}

func (t *tokenWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		t.ui.press(t.index, e.AbsolutePosition)
	}
}

func (t *tokenWidget) MouseUp(e *desktop.MouseEvent) {
	t.ui.release(e.AbsolutePosition)
}

// Dragging keeps being delivered to the token the drag started on.
func (t *tokenWidget) Dragged(e *fyne.DragEvent) {
	t.ui.dragTo(e.AbsolutePosition)
}

func (t *tokenWidget) DragEnd() {
	t.ui.release(t.ui.lastPos)
}

// flowLayout wraps tokens like running text. Its height depends on the
// width it was last laid out at; onResize runs when that width changes.
type flowLayout struct {
	lineHeight float32
	width      float32
	onResize   func()
}

func (l *flowLayout) place(objects []fyne.CanvasObject, width float32, move bool) float32 {
	var x, y float32
	for _, o := range objects {
		t := o.(*tokenWidget)
		if t.breaks > 0 {
			if move {
				t.Move(fyne.NewPos(x, y))
				t.Resize(fyne.NewSize(0, l.lineHeight))
			}
			x = 0
			y += l.lineHeight * float32(t.breaks)
			continue
		}
		size := t.MinSize()
		if x > 0 && x+size.Width > width {
			x = 0
			y += l.lineHeight
		}
		if move {
			t.Move(fyne.NewPos(x, y))
			t.Resize(fyne.NewSize(size.Width, l.lineHeight))
		}
		x += size.Width
	}
	return y + l.lineHeight
}

func (l *flowLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if l.width <= 0 {
		return fyne.NewSize(200, l.lineHeight)
	}
	return fyne.NewSize(200, l.place(objects, l.width, false))
}

func (l *flowLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	changed := size.Width != l.width
	l.width = size.Width
	l.place(objects, size.Width, true)
	if changed && l.onResize != nil {
		fyne.Do(l.onResize)
	}
}

// guiReader is the desktop front end: the same tracker, coordinator,
// placement and word bank as the terminal reader, driven by fyne events on
// the main thread.
type guiReader struct {
	s        *session
	log      *slog.Logger
	win      fyne.Window
	fontSize float32

	doc     *reader.Document
	tokens  []*tokenWidget
	page    *fyne.Container
	flow    *flowLayout
	tracker *selection.Tracker
	coord   *lookup.Coordinator

	releaseHandler func()
	lastPos        fyne.Position
	popAnchor      fyne.Position
	popRange       selection.Range
	pop            *widget.PopUp

	study, trans string
	status       *widget.Label
}

func newGUIReader(s *session, win fyne.Window, doc *reader.Document) *guiReader {
	g := &guiReader{
		s:        s,
		log:      s.log.With("component", "gui"),
		win:      win,
		fontSize: theme.TextSize() * 1.3,
		doc:      doc,
		coord:    lookup.NewCoordinator(),
		study:    s.cfg.Languages.Study,
		trans:    s.cfg.Languages.Translation,
		status:   widget.NewLabel(""),
	}
	g.flow = &flowLayout{lineHeight: fyne.MeasureText("Mg", g.fontSize, fyne.TextStyle{}).Height * 1.4}
	g.tracker = selection.NewTracker(doc.Tokens, g)
	g.tracker.SetReleaseHook(func(onRelease func()) func() {
		g.releaseHandler = onRelease
		return func() { g.releaseHandler = nil }
	})

	objects := make([]fyne.CanvasObject, 0, len(doc.Tokens))
	for _, tok := range doc.Tokens {
		t := newTokenWidget(g, tok)
		g.tokens = append(g.tokens, t)
		objects = append(objects, t)
	}
	g.page = container.New(g.flow, objects...)
	return g
}

func (g *guiReader) SelectionStarted() {
	g.coord.Close()
	g.closePopover()
}

func (g *guiReader) SelectionFinalized(f selection.Finalized) {
	req := g.coord.Request(f.Text, g.trans, g.study)
	g.popRange = f.Range
	g.popAnchor = fyne.NewPos(float32(f.Anchor.X), float32(f.Anchor.Y))
	g.fetch(req)
	g.showPopover()
}

// fetch runs req off the main thread and commits it back on it.
func (g *guiReader) fetch(req lookup.Request) {
	go func() {
		c := lookup.Fetch(context.Background(), g.s.provider, req, g.s.cfg.Lookup.Timeout)
		fyne.Do(func() {
			if !g.coord.Complete(c.ID, c.Value, c.Err) {
				g.log.Debug("dropping stale lookup", slog.Uint64("id", c.ID))
				return
			}
			g.showPopover()
		})
	}()
}

func (g *guiReader) press(index int, abs fyne.Position) {
	g.lastPos = abs
	g.tracker.Begin(index)
	g.paintSelection()
}

func (g *guiReader) dragTo(abs fyne.Position) {
	g.lastPos = abs
	if idx, ok := g.tokenAt(abs); ok {
		g.tracker.Extend(idx)
		g.paintSelection()
	}
}

func (g *guiReader) release(abs fyne.Position) {
	if g.tracker.State() != selection.Dragging {
		return
	}
	g.lastPos = abs
	// A release between tokens keeps the last focus and anchors at the pointer.
	if idx, ok := g.tokenAt(abs); ok {
		g.tracker.Extend(idx)
	}
	g.tracker.End(&selection.Point{X: int(abs.X), Y: int(abs.Y)})
	g.paintSelection()
}

// tokenAt hit-tests an absolute canvas position against the laid out
// tokens.
func (g *guiReader) tokenAt(abs fyne.Position) (int, bool) {
	origin := fyne.CurrentApp().Driver().AbsolutePositionForObject(g.page)
	p := abs.Subtract(origin)
	for _, t := range g.tokens {
		pos, size := t.Position(), t.Size()
		if p.X >= pos.X && p.X < pos.X+size.Width && p.Y >= pos.Y && p.Y < pos.Y+size.Height {
			return t.index, true
		}
	}
	return 0, false
}

func (g *guiReader) paintSelection() {
	rng, dragging := g.tracker.Range()
	active := dragging || g.coord.Active()
	if !dragging {
		rng = g.popRange
	}
	for _, t := range g.tokens {
		t.setSelected(active && rng.Contains(t.index))
	}
}

func (g *guiReader) closePopover() {
	if g.pop != nil {
		g.pop.Hide()
		g.pop = nil
	}
}

func (g *guiReader) popoverContent() fyne.CanvasObject {
	req, _ := g.coord.Current()
	res := g.coord.Result()

	title := widget.NewLabelWithStyle(req.Text, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	title.Truncation = fyne.TextTruncateEllipsis
	langs := widget.NewLabel(lookup.LanguageName(req.TargetLang) + " → " + lookup.LanguageName(req.SourceLang))

	var body fyne.CanvasObject
	switch res.Status {
	case lookup.Pending:
		body = widget.NewProgressBarInfinite()
	case lookup.Failed:
		l := widget.NewLabel(res.Message)
		l.Wrapping = fyne.TextWrapWord
		l.Importance = widget.DangerImportance
		body = l
	default:
		l := widget.NewLabel(res.Value)
		l.Wrapping = fyne.TextWrapWord
		body = l
	}

	save := widget.NewButton("Save", g.save)
	if res.Status != lookup.Resolved {
		save.Disable()
	}
	buttons := container.NewHBox(
		save,
		widget.NewButton("Copy", g.copy),
		widget.NewButton("Close", func() {
			g.coord.Close()
			g.closePopover()
			g.paintSelection()
		}),
	)
	return container.NewVBox(title, langs, body, buttons)
}

func (g *guiReader) showPopover() {
	if !g.coord.Active() {
		return
	}
	g.closePopover()
	content := g.popoverContent()
	g.pop = widget.NewPopUp(content, g.win.Canvas())

	size := fyne.NewSize(popWidth, content.MinSize().Height+theme.Padding()*2)
	g.pop.Resize(size)
	view := g.win.Canvas().Size()
	p := popover.Place(
		popover.Point{X: int(g.popAnchor.X), Y: int(g.popAnchor.Y)},
		popover.Size{W: int(size.Width), H: int(size.Height)},
		popover.Size{W: int(view.Width), H: int(view.Height)},
		popover.Options{Offset: popOffset, Margin: popMargin},
	)
	g.pop.ShowAtPosition(fyne.NewPos(float32(p.Left), float32(p.Top)))
}

func (g *guiReader) save() {
	req, ok := g.coord.Current()
	res := g.coord.Result()
	if !ok || res.Status != lookup.Resolved {
		return
	}
	r, err := g.s.vocab.Save(context.Background(), req.Text, res.Value, req.SourceLang, req.TargetLang)
	switch {
	case errors.Is(err, vocab.ErrSignInRequired):
		g.status.SetText("Sign in to save words")
	case err != nil:
		dialog.ShowError(err, g.win)
	case r == vocab.AlreadySaved:
		g.status.SetText(fmt.Sprintf("%q is already in your word bank", req.Text))
	default:
		g.status.SetText(fmt.Sprintf("Saved %q", req.Text))
	}
}

func (g *guiReader) copy() {
	req, ok := g.coord.Current()
	if !ok {
		return
	}
	text := req.Text
	if res := g.coord.Result(); res.Status == lookup.Resolved {
		text = res.Value
	}
	if err := clipboard.WriteAll(text); err != nil {
		g.status.SetText("Copy failed: " + err.Error())
		return
	}
	g.status.SetText("Copied")
}

func (g *guiReader) setLanguages(study, trans string) {
	g.study, g.trans = study, trans
	if err := g.s.state.SetLanguages(state.Languages{Study: study, Translation: trans}); err != nil {
		g.log.Warn("save languages failed", slog.String("error", err.Error()))
	}
	if req, ok := g.coord.SetLanguages(trans, study); ok {
		g.fetch(req)
		g.showPopover()
	}
}

func (g *guiReader) languageBar() fyne.CanvasObject {
	names := make([]string, len(lookup.Languages))
	codes := map[string]string{}
	for i, l := range lookup.Languages {
		names[i] = l.Name
		codes[l.Name] = l.Code
	}
	study := widget.NewSelect(names, nil)
	trans := widget.NewSelect(names, nil)
	study.SetSelected(lookup.LanguageName(g.study))
	trans.SetSelected(lookup.LanguageName(g.trans))
	study.OnChanged = func(name string) { g.setLanguages(codes[name], g.trans) }
	trans.OnChanged = func(name string) { g.setLanguages(g.study, codes[name]) }
	return container.NewHBox(widget.NewLabel("Reading"), study, widget.NewLabel("into"), trans)
}

func (g *guiReader) accountButton() *widget.Button {
	var b *widget.Button
	label := func() string {
		if u := g.s.identity.Current(); u != nil {
			return u.Email
		}
		return "Sign in"
	}
	b = widget.NewButton(label(), func() {
		if g.s.identity.Current() != nil {
			g.s.identity.LogOut()
			_ = g.s.state.SetCurrentUser("")
			_ = g.s.vocab.Load(context.Background(), "")
			b.SetText(label())
			return
		}
		g.signInDialog(func() { b.SetText(label()) })
	})
	return b
}

func (g *guiReader) signInDialog(done func()) {
	email := widget.NewEntry()
	password := widget.NewPasswordEntry()
	create := widget.NewCheck("Create a new account", nil)
	items := []*widget.FormItem{
		widget.NewFormItem("Email", email),
		widget.NewFormItem("Password", password),
		widget.NewFormItem("", create),
	}
	dialog.ShowForm("Sign in", "OK", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		ctx := context.Background()
		var u *identity.User
		var err error
		if create.Checked {
			u, err = g.s.identity.SignUp(ctx, email.Text, password.Text)
		} else {
			u, err = g.s.identity.LogIn(ctx, email.Text, password.Text)
		}
		if err != nil {
			dialog.ShowError(err, g.win)
			return
		}
		_ = g.s.state.SetCurrentUser(u.ID)
		if err := g.s.vocab.Load(ctx, u.ID); err != nil {
			dialog.ShowError(err, g.win)
		}
		g.s.rememberDocument(ctx, g.doc)
		done()
	}, g.win)
}

func (g *guiReader) content() fyne.CanvasObject {
	top := container.NewBorder(nil, nil, widget.NewLabelWithStyle(g.doc.Title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		g.accountButton(), g.languageBar())
	scroll := container.NewVScroll(g.page)
	g.flow.onResize = scroll.Refresh
	return container.NewBorder(top, g.status, nil, nil, scroll)
}

func main() {
	o := parseFlags("glossr-gui", "Glossr - Desktop Reader with Instant Translations")

	ctx := context.Background()
	s, done, err := runCommands(ctx, "glossr-gui", o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if done {
		return
	}
	defer s.Close()

	doc, _, err := s.openDocument(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		s.Close()
		os.Exit(1)
	}
	s.rememberDocument(ctx, doc)

	a := app.New()
	w := a.NewWindow("glossr - " + doc.Title)
	g := newGUIReader(s, w, doc)

	// Leaving the window mid-drag ends the drag where it is.
	a.Lifecycle().SetOnExitedForeground(func() {
		if g.releaseHandler != nil {
			g.releaseHandler()
			g.paintSelection()
		}
	})

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyEscape:
			if g.tracker.State() == selection.Dragging {
				g.tracker.Cancel()
			} else {
				g.coord.Close()
				g.closePopover()
			}
			g.paintSelection()
		case fyne.KeyQ:
			a.Quit()
		}
	})

	w.Resize(fyne.NewSize(900, 700))
	w.SetContent(g.content())
	w.ShowAndRun()
}
