package tui

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/synex/internal/browser"
	"github.com/naveenspark/synex/pkg/auth"
	"github.com/naveenspark/synex/pkg/domain"
	"github.com/naveenspark/synex/pkg/session"
)

// Sessions ends the signed-in session.
type Sessions interface {
	Logout(ctx context.Context) error
}

// Swapped in tests.
var (
	copyToClipboard = clipboard.WriteAll
	openURL         = browser.Open
)

type logoutDoneMsg struct {
	err error
}

type copyDoneMsg struct {
	err error
}

type openDoneMsg struct {
	url string
	err error
}

type dashboardModel struct {
	sessions   Sessions
	baseURL    string
	user       *domain.User
	tokens     domain.TokenPair
	claims     session.Claims
	claimsOK   bool
	cursor     int
	loggingOut bool
	status     string
	statusErr  bool
	now        func() time.Time
}

func newDashboardModel(s Sessions, baseURL string, res auth.Result) dashboardModel {
	m := dashboardModel{
		sessions: s,
		baseURL:  baseURL,
		user:     res.User,
		tokens:   res.Tokens,
		now:      time.Now,
	}
	if res.Tokens.AccessToken != "" {
		if c, err := session.AccessClaims(res.Tokens.AccessToken); err == nil {
			m.claims = c
			m.claimsOK = true
		}
	}
	return m
}

// pageURL joins a page name onto the web dashboard address.
func pageURL(base, page string) string {
	base = strings.TrimRight(base, "/")
	if page == "" {
		return base
	}
	return base + "/" + url.PathEscape(page)
}

func (m dashboardModel) pages() []string {
	if m.user == nil {
		return nil
	}
	return m.user.Pages
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case copyDoneMsg:
		if msg.err != nil {
			m.setStatus("copy failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("access token copied to clipboard", false)
		}
		return m, nil

	case openDoneMsg:
		if msg.err != nil {
			m.setStatus("could not open browser: "+msg.err.Error(), true)
		} else {
			m.setStatus("opened "+msg.url, false)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *dashboardModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m dashboardModel) updateKeys(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	if m.loggingOut {
		return m, nil
	}
	pages := m.pages()

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(pages)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if len(pages) > 0 {
			return m, openCmd(pageURL(m.baseURL, pages[m.cursor]))
		}
	case "o":
		return m, openCmd(pageURL(m.baseURL, ""))
	case "c":
		tok := m.tokens.AccessToken
		if tok == "" {
			m.setStatus("no access token to copy", true)
			return m, nil
		}
		return m, func() tea.Msg {
			return copyDoneMsg{err: copyToClipboard(tok)}
		}
	case "L":
		m.loggingOut = true
		m.status = ""
		s := m.sessions
		return m, func() tea.Msg {
			if s == nil {
				return logoutDoneMsg{}
			}
			return logoutDoneMsg{err: s.Logout(context.Background())}
		}
	}
	return m, nil
}

func openCmd(u string) tea.Cmd {
	return func() tea.Msg {
		return openDoneMsg{url: u, err: openURL(u)}
	}
}

func (m dashboardModel) View() string {
	var b strings.Builder
	if m.user == nil {
		return dimStyle.Render("not signed in")
	}

	b.WriteString(titleStyle.Render("Welcome, " + m.user.DisplayName()))
	b.WriteString("\n")
	var meta []string
	for _, v := range []string{m.user.Email, m.user.Role} {
		if v != "" {
			meta = append(meta, v)
		}
	}
	b.WriteString(metaStyle.Render(strings.Join(meta, " . ")))
	b.WriteString("\n\n")

	b.WriteString(selectedStyle.Render("Pages"))
	b.WriteString("\n")
	pages := m.pages()
	if len(pages) == 0 {
		b.WriteString("  " + dimStyle.Render("no pages granted") + "\n")
	}
	for i, p := range pages {
		prefix := "  "
		style := normalStyle
		if i == m.cursor {
			prefix = accentStyle.Render("> ")
			style = selectedStyle
		}
		b.WriteString(prefix + style.Render(truncStr(p, 40)) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(selectedStyle.Render("Session"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s  %s\n", metaStyle.Render("access "), dimStyle.Render(tokenPreview(m.tokens.AccessToken)))
	fmt.Fprintf(&b, "  %s  %s\n", metaStyle.Render("refresh"), dimStyle.Render(tokenPreview(m.tokens.RefreshToken)))
	switch {
	case m.claimsOK && m.claims.Expired(m.now()):
		fmt.Fprintf(&b, "  %s  %s\n", metaStyle.Render("expiry "), errorStyle.Render(formatExpiry(m.claims, m.now())))
	case m.claimsOK:
		fmt.Fprintf(&b, "  %s  %s\n", metaStyle.Render("expiry "), dimStyle.Render(formatExpiry(m.claims, m.now())))
	case m.tokens.AccessToken != "":
		fmt.Fprintf(&b, "  %s  %s\n", metaStyle.Render("expiry "), dimStyle.Render("opaque token"))
	}
	b.WriteString("\n")

	switch {
	case m.loggingOut:
		b.WriteString(dimStyle.Render("signing out..."))
	case m.status != "" && m.statusErr:
		b.WriteString(errorStyle.Render(m.status))
	case m.status != "":
		b.WriteString(successStyle.Render(m.status))
	}
	return b.String()
}

func (m dashboardModel) helpKeys() string {
	return helpBar(
		[2]string{"j/k", "pages"},
		[2]string{"enter", "open page"},
		[2]string{"o", "web"},
		[2]string{"c", "copy token"},
		[2]string{"L", "logout"},
		[2]string{"q", "quit"},
	)
}
