package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/synex/pkg/auth"
	"github.com/naveenspark/synex/pkg/client"
)

// Recovery is the password-reset side of the auth gateway.
type Recovery interface {
	ForgotPassword(ctx context.Context, email string) (*client.Envelope, error)
	VerifyOTP(ctx context.Context, payload map[string]any) (*client.Envelope, error)
	ResendOTP(ctx context.Context, payload map[string]any) (*client.Envelope, error)
	ResetPassword(ctx context.Context, newPassword, confirmPassword string) (*client.Envelope, error)
}

type recoveryStage int

const (
	stageForgot recoveryStage = iota
	stageVerify
	stageReset
)

type recoveryOp int

const (
	opForgot recoveryOp = iota
	opVerify
	opResend
	opReset
)

type recoveryResultMsg struct {
	seq int
	op  recoveryOp
	env *client.Envelope
	err error
}

// recoveryDoneMsg returns the App to the login form.
type recoveryDoneMsg struct {
	notice string
}

type recoveryModel struct {
	svc     Recovery
	stage   recoveryStage
	email   field
	code    field
	newPw   field
	confirm field
	focus   int // 0 new password, 1 confirmation
	reveal  bool
	busy    bool
	seq     int
	errMsg  string
	notice  string
}

func newRecoveryModel(svc Recovery) recoveryModel {
	return recoveryModel{
		svc:     svc,
		email:   field{label: "email", placeholder: "you@company.com"},
		code:    field{label: "code ", placeholder: "6-digit code"},
		newPw:   field{label: "new password", secret: true},
		confirm: field{label: "confirm     ", secret: true},
	}
}

// restart begins the flow again at the email step. seq keeps counting so
// replies from an abandoned attempt are ignored.
func (m recoveryModel) restart(email string) recoveryModel {
	fresh := newRecoveryModel(m.svc)
	fresh.seq = m.seq + 1
	fresh.email.value = email
	return fresh
}

func (m recoveryModel) Update(msg tea.Msg) (recoveryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case recoveryResultMsg:
		if msg.seq != m.seq || !m.busy {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			m.errMsg = recoveryErrorMessage(msg.err)
			return m, nil
		}
		return m.advance(msg.op, msg.env)

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m recoveryModel) advance(op recoveryOp, env *client.Envelope) (recoveryModel, tea.Cmd) {
	serverMsg := ""
	if env != nil {
		serverMsg = env.Message
	}
	pick := func(fallback string) string {
		if serverMsg != "" {
			return serverMsg
		}
		return fallback
	}

	switch op {
	case opForgot:
		m.stage = stageVerify
		m.notice = pick("We sent a code to " + strings.TrimSpace(m.email.value) + ".")
	case opResend:
		m.notice = pick("A new code is on its way.")
	case opVerify:
		m.stage = stageReset
		m.focus = 0
		m.notice = pick("Code verified. Choose a new password.")
	case opReset:
		notice := pick("Password updated.") + " Sign in with your new password."
		return m, func() tea.Msg { return recoveryDoneMsg{notice: notice} }
	}
	return m, nil
}

func (m recoveryModel) updateKeys(msg tea.KeyMsg) (recoveryModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "enter", "ctrl+s":
		if m.stage == stageReset && m.focus == 0 && msg.String() == "enter" {
			m.focus = 1
			return m, nil
		}
		return m.submit()
	case "ctrl+r":
		if m.stage == stageVerify {
			return m.resend()
		}
		if m.stage == stageReset {
			m.reveal = !m.reveal
		}
		return m, nil
	case "tab", "down", "shift+tab", "up":
		if m.stage == stageReset {
			m.focus = 1 - m.focus
		}
		return m, nil
	}

	f := m.focused()
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
	}
	return m, nil
}

func (m *recoveryModel) focused() *field {
	switch m.stage {
	case stageVerify:
		return &m.code
	case stageReset:
		if m.focus == 0 {
			return &m.newPw
		}
		return &m.confirm
	}
	return &m.email
}

func (m recoveryModel) submit() (recoveryModel, tea.Cmd) {
	svc := m.svc
	email := strings.TrimSpace(m.email.value)

	var op recoveryOp
	var call func(context.Context) (*client.Envelope, error)
	switch m.stage {
	case stageForgot:
		if err := auth.ValidateEmail(email); err != nil {
			m.errMsg = validationMessage(err)
			return m, nil
		}
		op = opForgot
		call = func(ctx context.Context) (*client.Envelope, error) {
			return svc.ForgotPassword(ctx, email)
		}
	case stageVerify:
		code := strings.TrimSpace(m.code.value)
		if code == "" {
			m.errMsg = validationMessage(&auth.ValidationError{Field: "otp", Message: "is required"})
			return m, nil
		}
		op = opVerify
		call = func(ctx context.Context) (*client.Envelope, error) {
			return svc.VerifyOTP(ctx, map[string]any{"email": email, "otp": code})
		}
	case stageReset:
		newPw, confirm := m.newPw.value, m.confirm.value
		if err := auth.ValidateReset(newPw, confirm); err != nil {
			m.errMsg = validationMessage(err)
			return m, nil
		}
		op = opReset
		call = func(ctx context.Context) (*client.Envelope, error) {
			return svc.ResetPassword(ctx, newPw, confirm)
		}
	}
	return m.dispatch(op, call)
}

func (m recoveryModel) resend() (recoveryModel, tea.Cmd) {
	svc := m.svc
	email := strings.TrimSpace(m.email.value)
	return m.dispatch(opResend, func(ctx context.Context) (*client.Envelope, error) {
		return svc.ResendOTP(ctx, map[string]any{"email": email})
	})
}

func (m recoveryModel) dispatch(op recoveryOp, call func(context.Context) (*client.Envelope, error)) (recoveryModel, tea.Cmd) {
	m.seq++
	m.busy = true
	m.errMsg = ""
	m.notice = ""
	seq := m.seq
	return m, func() tea.Msg {
		env, err := call(context.Background())
		return recoveryResultMsg{seq: seq, op: op, env: env, err: err}
	}
}

func (m recoveryModel) View() string {
	var b strings.Builder
	switch m.stage {
	case stageForgot:
		b.WriteString(titleStyle.Render("Forgot password"))
		b.WriteString("\n" + dimStyle.Render("Enter your account email and we will send a one-time code.") + "\n\n")
		b.WriteString(renderField(m.email, true, false))
	case stageVerify:
		b.WriteString(titleStyle.Render("Verify code"))
		b.WriteString("\n" + dimStyle.Render("Code sent to "+strings.TrimSpace(m.email.value)) + "\n\n")
		b.WriteString(renderField(m.code, true, false))
	case stageReset:
		b.WriteString(titleStyle.Render("Reset password"))
		b.WriteString("\n\n")
		b.WriteString(renderField(m.newPw, m.focus == 0, m.reveal) + "\n")
		b.WriteString(renderField(m.confirm, m.focus == 1, m.reveal))
	}
	b.WriteString("\n\n")

	switch {
	case m.busy:
		b.WriteString(dimStyle.Render("working..."))
	case m.errMsg != "":
		b.WriteString(errorStyle.Render(m.errMsg))
	case m.notice != "":
		b.WriteString(successStyle.Render(m.notice))
	}
	return b.String()
}

func (m recoveryModel) helpKeys() string {
	switch m.stage {
	case stageVerify:
		return helpBar([2]string{"enter", "verify"}, [2]string{"ctrl+r", "resend"}, [2]string{"esc", "back"})
	case stageReset:
		return helpBar([2]string{"tab", "next"}, [2]string{"enter", "save"}, [2]string{"ctrl+r", "show"}, [2]string{"esc", "back"})
	}
	return helpBar([2]string{"enter", "send code"}, [2]string{"esc", "back"})
}
