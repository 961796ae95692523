package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/glossr/internal/identity"
)

type accountForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	signUp   bool
	err      string
}

func newAccountForm() accountForm {
	pw := newInput("password")
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	return accountForm{email: newInput("you@example.com"), password: pw}
}

var toggleMode = key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "log in / sign up"))

func (m *Model) openAccount() tea.Cmd {
	m.screen = screenAccount
	a := &m.account
	a.err = ""
	a.password.Reset()
	a.focus = 0
	a.password.Blur()
	return a.email.Focus()
}

func (m *Model) updateAccount(msg tea.KeyMsg) tea.Cmd {
	a := &m.account
	if key.Matches(msg, m.keys.Back) {
		m.screen = screenReader
		return nil
	}
	if m.userID() != "" {
		switch {
		case key.Matches(msg, m.keys.Enter):
			m.signOut()
		case key.Matches(msg, m.keys.Quit):
			m.screen = screenReader
		}
		return nil
	}
	if m.deps.Identity == nil {
		m.screen = screenReader
		return nil
	}

	switch {
	case key.Matches(msg, toggleMode):
		a.signUp = !a.signUp
		a.err = ""
		return nil
	case key.Matches(msg, m.keys.Tab), msg.Type == tea.KeyUp, msg.Type == tea.KeyDown:
		a.focus = 1 - a.focus
		if a.focus == 0 {
			a.password.Blur()
			return a.email.Focus()
		}
		a.email.Blur()
		return a.password.Focus()
	case key.Matches(msg, m.keys.Enter):
		if a.focus == 0 {
			a.focus = 1
			a.email.Blur()
			return a.password.Focus()
		}
		m.submitAccount()
		return nil
	}

	var cmd tea.Cmd
	if a.focus == 0 {
		a.email, cmd = a.email.Update(msg)
	} else {
		a.password, cmd = a.password.Update(msg)
	}
	return cmd
}

// submitAccount signs up or logs in and switches the session to the user.
func (m *Model) submitAccount() {
	a := &m.account
	ctx := context.Background()
	email, password := a.email.Value(), a.password.Value()

	var u *identity.User
	var err error
	if a.signUp {
		u, err = m.deps.Identity.SignUp(ctx, email, password)
	} else {
		u, err = m.deps.Identity.LogIn(ctx, email, password)
	}
	switch {
	case errors.Is(err, identity.ErrValidation):
		a.err = strings.TrimPrefix(err.Error(), identity.ErrValidation.Error()+": ")
		return
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrAlreadyExists):
		a.err = err.Error()
		return
	case err != nil:
		m.log.Error("account action failed", slog.String("error", err.Error()))
		a.err = "Something went wrong. See the log for details."
		return
	}

	a.password.Reset()
	a.err = ""
	m.onSignedIn(u)
	m.screen = screenReader
}

// onSignedIn loads the user's bank, remembers the session on this device
// and stores the open document in their library.
func (m *Model) onSignedIn(u *identity.User) {
	if m.deps.State != nil {
		if err := m.deps.State.SetCurrentUser(u.ID); err != nil {
			m.log.Warn("remember user failed", slog.String("error", err.Error()))
		}
	}
	if m.deps.Vocab != nil {
		if err := m.deps.Vocab.Load(context.Background(), u.ID); err != nil {
			m.setError("Could not load your word bank: " + err.Error())
			return
		}
	}
	m.persistDocument()
	m.setStatus("Signed in as " + u.Email)
}

func (m *Model) signOut() {
	m.saveProgress()
	m.deps.Identity.LogOut()
	if m.deps.State != nil {
		_ = m.deps.State.SetCurrentUser("")
	}
	if m.deps.Vocab != nil {
		_ = m.deps.Vocab.Load(context.Background(), "")
	}
	m.screen = screenReader
	m.setStatus("Signed out")
}

func (m *Model) viewAccount() string {
	a := m.account
	var sb strings.Builder

	switch {
	case m.deps.Identity == nil:
		sb.WriteString(titleStyle.Render("Account"))
		sb.WriteString("\n\n")
		sb.WriteString(mutedStyle.Render("  Accounts need a database; check [storage] in your config."))
	case m.userID() != "":
		u := m.deps.Identity.Current()
		sb.WriteString(titleStyle.Render("Account"))
		sb.WriteString("\n\n")
		sb.WriteString(listItemStyle.Render("Signed in as " + u.Email))
		sb.WriteString("\n\n")
		sb.WriteString(mutedStyle.Render("  enter sign out · esc back"))
	default:
		title := "Log in"
		if a.signUp {
			title = "Create account"
		}
		sb.WriteString(titleStyle.Render(title))
		sb.WriteString("\n\n")
		sb.WriteString(listItemStyle.Render(a.email.View()))
		sb.WriteString("\n")
		sb.WriteString(listItemStyle.Render(a.password.View()))
		sb.WriteString("\n\n")
		if a.err != "" {
			sb.WriteString(errorStyle.Render(a.err))
			sb.WriteString("\n\n")
		}
		sb.WriteString(mutedStyle.Render("  enter submit · tab switch field · ctrl+n log in / sign up · esc back"))
	}

	return lipgloss.NewStyle().Height(max(m.height, 1)).Render(sb.String())
}
