package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/synex/pkg/auth"
)

type loginState int

const (
	loginIdle loginState = iota
	loginSubmitting
	loginSuccess
	loginFailed
)

type loginField int

const (
	loginEmail loginField = iota
	loginPassword
	numLoginFields
)

// loginResultMsg carries the outcome of one submission. attempt ties it to
// the submission that produced it.
type loginResultMsg struct {
	attempt int
	res     auth.Result
	err     error
}

// authenticatedMsg tells the App to show the dashboard.
type authenticatedMsg struct {
	res auth.Result
}

// openRecoveryMsg tells the App to start the recovery flow.
type openRecoveryMsg struct {
	email string
}

type loginModel struct {
	auth    auth.Authenticator
	fields  [numLoginFields]field
	focus   loginField
	reveal  bool
	state   loginState
	attempt int
	errMsg  string
	notice  string
}

func newLoginModel(a auth.Authenticator) loginModel {
	m := loginModel{auth: a}
	m.fields[loginEmail] = field{label: "email   ", placeholder: "you@company.com"}
	m.fields[loginPassword] = field{label: "password", placeholder: "••••••••", secret: true}
	return m
}

// reset clears the form for a fresh sign-in and drops any result still in
// flight.
func (m loginModel) reset(notice string) loginModel {
	fresh := newLoginModel(m.auth)
	fresh.attempt = m.attempt + 1
	fresh.notice = notice
	return fresh
}

func (m loginModel) email() string    { return strings.TrimSpace(m.fields[loginEmail].value) }
func (m loginModel) password() string { return m.fields[loginPassword].value }

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		if msg.attempt != m.attempt || m.state != loginSubmitting {
			return m, nil
		}
		switch {
		case errors.Is(msg.err, auth.ErrSuperseded):
			m.state = loginIdle
		case msg.err != nil:
			m.state = loginFailed
			m.errMsg = loginErrorMessage(msg.err)
		case msg.res.User == nil:
			m.state = loginFailed
			m.errMsg = msgUnexpected
		default:
			m.state = loginSuccess
			m.fields[loginPassword].value = ""
			res := msg.res
			return m, func() tea.Msg { return authenticatedMsg{res: res} }
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m loginModel) updateKeys(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	if m.state == loginSubmitting {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "enter":
		if m.focus == loginEmail {
			m.focus = loginPassword
			return m, nil
		}
		return m.submit()
	case "tab", "down":
		m.focus = (m.focus + 1) % numLoginFields
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numLoginFields) % numLoginFields
		return m, nil
	case "ctrl+r":
		m.reveal = !m.reveal
		return m, nil
	case "ctrl+f":
		email := m.email()
		return m, func() tea.Msg { return openRecoveryMsg{email: email} }
	}

	f := &m.fields[m.focus]
	before := f.value
	if msg.Type == tea.KeyRunes {
		for _, r := range msg.Runes {
			f.value = editRune(f.value, string(r))
		}
	} else {
		f.value = editRune(f.value, msg.String())
	}
	if f.value != before {
		m.errMsg = ""
		m.notice = ""
		if m.state == loginFailed {
			m.state = loginIdle
		}
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	email, password := m.email(), m.password()
	if err := auth.ValidateLogin(email, password); err != nil {
		m.errMsg = loginErrorMessage(err)
		return m, nil
	}

	m.attempt++
	m.state = loginSubmitting
	m.errMsg = ""
	m.notice = ""

	attempt, authn := m.attempt, m.auth
	return m, func() tea.Msg {
		res, err := authn.Login(context.Background(), email, password)
		return loginResultMsg{attempt: attempt, res: res, err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in to Synex"))
	b.WriteString("\n\n")
	for i := loginField(0); i < numLoginFields; i++ {
		b.WriteString(renderField(m.fields[i], i == m.focus, m.reveal))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.state == loginSubmitting:
		b.WriteString(dimStyle.Render("signing in..."))
	case m.state == loginFailed && m.errMsg != "":
		b.WriteString(errorStyle.Render(m.errMsg))
	case m.errMsg != "":
		b.WriteString(warnStyle.Render(m.errMsg))
	case m.notice != "":
		b.WriteString(successStyle.Render(m.notice))
	}
	b.WriteString("\n\n")
	b.WriteString(accentStyle.Render("ctrl+f") + " " + dimStyle.Render("Forgot password?"))
	return b.String()
}

func (m loginModel) helpKeys() string {
	reveal := "show"
	if m.reveal {
		reveal = "hide"
	}
	return helpBar(
		[2]string{"tab", "next"},
		[2]string{"enter", "sign in"},
		[2]string{"ctrl+r", reveal},
		[2]string{"ctrl+f", "forgot"},
		[2]string{"ctrl+c", "quit"},
	)
}
