// Package tui is the interactive terminal client: sign-in, password
// recovery and the signed-in dashboard.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/synex/pkg/auth"
)

type view int

const (
	viewLogin view = iota
	viewRecovery
	viewDashboard
)

// Options wires the App to the auth layer.
type Options struct {
	// Auth checks credentials. Usually the gateway; the demo allow-list
	// in demo builds.
	Auth     auth.Authenticator
	Recovery Recovery
	Sessions Sessions

	DashboardURL string
	Version      string
	Updates      VersionChecker
}

// App is the root Bubbletea model.
type App struct {
	opts      Options
	view      view
	login     loginModel
	recovery  recoveryModel
	dashboard dashboardModel
	update    string
	width     int
	height    int
	frame     int // logo shimmer animation frame
}

// NewApp creates the TUI, starting at the sign-in form.
func NewApp(opts Options) App {
	return App{
		opts:     opts,
		login:    newLoginModel(opts.Auth),
		recovery: newRecoveryModel(opts.Recovery),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), checkVersion(a.opts.Updates, a.opts.Version))
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case versionCheckMsg:
		if msg.hasUpdate {
			a.update = msg.latestVersion
		}
		return a, nil

	case authenticatedMsg:
		a.dashboard = newDashboardModel(a.opts.Sessions, a.opts.DashboardURL, msg.res)
		a.view = viewDashboard
		return a, nil

	case openRecoveryMsg:
		if a.opts.Recovery == nil {
			a.login.notice = ""
			a.login.errMsg = "Password recovery is not available."
			return a, nil
		}
		a.recovery = a.recovery.restart(msg.email)
		a.view = viewRecovery
		return a, nil

	case recoveryDoneMsg:
		a.login = a.login.reset(msg.notice)
		a.view = viewLogin
		return a, nil

	case logoutDoneMsg:
		notice := "Signed out."
		if msg.err != nil {
			notice = "Signed out, but saved tokens could not be removed."
		}
		a.login = a.login.reset(notice)
		a.dashboard = dashboardModel{}
		a.view = viewLogin
		return a, nil

	case loginResultMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd

	case recoveryResultMsg:
		var cmd tea.Cmd
		a.recovery, cmd = a.recovery.Update(msg)
		return a, cmd

	case copyDoneMsg, openDoneMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "esc":
			if a.view == viewRecovery {
				email := strings.TrimSpace(a.recovery.email.value)
				a.recovery = a.recovery.restart("")
				a.login = a.login.reset("")
				a.login.fields[loginEmail].value = email
				a.view = viewLogin
				return a, nil
			}
		case "q":
			if a.view == viewDashboard && !a.dashboard.loggingOut {
				return a, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewRecovery:
		a.recovery, cmd = a.recovery.Update(msg)
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	header := centerLine(logo, a.width)
	if a.update != "" {
		banner := updateBannerStyle.Render(fmt.Sprintf("%s available . run synex update", a.update))
		header += "\n" + centerLine(banner, a.width)
	} else {
		header += "\n"
	}

	var body, help string
	switch a.view {
	case viewLogin:
		body = a.login.View()
		help = a.login.helpKeys()
	case viewRecovery:
		body = a.recovery.View()
		help = a.recovery.helpKeys()
	case viewDashboard:
		body = a.dashboard.View()
		help = a.dashboard.helpKeys()
	}
	body = panelStyle.Render(body)
	body = centerBlock(body, a.width)

	// Chrome budget: header(2) + spacer(1) + help(1)
	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n\n%s\n%s", header, body, help)
}

func centerLine(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func centerBlock(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
