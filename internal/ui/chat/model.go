// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/pnuchat/internal/dispatch"
	"github.com/jeranaias/pnuchat/internal/render"
	"github.com/jeranaias/pnuchat/internal/session"
	"github.com/jeranaias/pnuchat/internal/ui/styles"
	"github.com/jeranaias/pnuchat/internal/util"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the chat view.
type Options struct {
	Title       string
	Subtitle    string
	Placeholder string
	LoadingText string

	// MarkdownStyle overrides the glamour style picked from the theme.
	MarkdownStyle string

	// Context is passed to every answering call. Defaults to Background.
	Context context.Context

	// CopyFunc writes to the clipboard. Defaults to clipboard.WriteAll.
	CopyFunc func(string) error
}

func (o *Options) fillDefaults(theme *styles.Theme) {
	if o.Title == "" {
		o.Title = "PNU AI Assistant"
	}
	if o.Placeholder == "" {
		o.Placeholder = "질문을 입력하세요..."
	}
	if o.LoadingText == "" {
		o.LoadingText = "답변 생성 중..."
	}
	if o.MarkdownStyle == "" {
		o.MarkdownStyle = theme.MarkdownStyle()
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.CopyFunc == nil {
		o.CopyFunc = clipboard.WriteAll
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the bubbletea model for the chat view.
type Model struct {
	session *session.Session
	theme   *styles.Theme
	opts    Options
	keys    KeyMap

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	markdown *render.Markdown

	width  int
	height int

	notice    string
	noticeSeq int
}

// New creates a chat view over sess.
func New(sess *session.Session, theme *styles.Theme, opts Options) Model {
	opts.fillDefaults(theme)
	if theme.Width == 0 {
		theme.SetSize(80, 24)
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = opts.Placeholder
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.Placeholder
	ti.CharLimit = 4096
	ti.SetValue(sess.Draft())
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	m := Model{
		session:  sess,
		theme:    theme,
		opts:     opts,
		keys:     DefaultKeyMap(),
		viewport: vp,
		input:    ti,
		spinner:  sp,
		help:     help.New(),
		markdown: render.NewMarkdown(opts.MarkdownStyle, 76),
	}
	m.updateViewport()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case answerMsg:
		return m.handleAnswer(msg)

	case copyMsg:
		if msg.err != nil {
			return m.setNotice("클립보드 복사 실패: " + msg.err.Error())
		}
		return m.setNotice("답변을 클립보드에 복사했습니다")

	case ReloadMsg:
		return m.handleReload(msg)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.session.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateViewport()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)

	// header 1 + input box 3 + status 1
	const reserved = 5
	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-reserved, 1)

	// box border 2 + padding 2 + prompt 2
	m.input.Width = max(m.width-6, 10)
	m.help.Width = m.width

	m.markdown = m.markdown.WithWidth(max(m.theme.BubbleWidth()-4, 20))
	m.updateViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Copy):
		turn, ok := m.session.LastAnswer()
		if !ok {
			return m.setNotice("복사할 답변이 없습니다")
		}
		return m, copyCmd(m.opts.CopyFunc, turn.Text)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetDraft(m.input.Value())
	return m, cmd
}

// submit hands the draft to the session. An accepted submission clears the
// session draft, which the input then mirrors.
func (m Model) submit() (tea.Model, tea.Cmd) {
	raw := m.input.Value()
	m.session.SetDraft(raw)
	call, err := m.session.Submit(raw)
	m.input.SetValue(m.session.Draft())

	switch {
	case errors.Is(err, dispatch.ErrBusy):
		return m.setNotice("이전 질문에 대한 답변을 기다리는 중입니다")
	case strings.TrimSpace(raw) == "":
		return m, nil
	}

	m.updateViewport()
	m.viewport.GotoBottom()
	if call == nil {
		return m.setNotice("질문이 대기열에 추가되었습니다")
	}
	return m, tea.Batch(runCall(m.opts.Context, call), m.spinner.Tick)
}

func (m Model) handleAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	res := m.session.Resolve(msg.outcome)
	if !res.Applied {
		return m, nil
	}

	m.updateViewport()
	m.viewport.GotoBottom()

	if res.Next != nil {
		return m, runCall(m.opts.Context, res.Next)
	}
	return m, nil
}

func (m Model) handleReload(msg ReloadMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.setNotice("설정 파일 오류: " + util.OneLine(msg.Err.Error()))
	}
	if msg.Title != "" {
		m.opts.Title = msg.Title
	}
	if msg.Placeholder != "" {
		m.opts.Placeholder = msg.Placeholder
		m.input.Placeholder = msg.Placeholder
	}
	if msg.LoadingText != "" {
		m.opts.LoadingText = msg.LoadingText
	}
	m.updateViewport()
	return m.setNotice("설정을 다시 불러왔습니다")
}

func (m Model) setNotice(text string) (tea.Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	return m, expireNotice(m.noticeSeq)
}

// updateViewport re-renders the transcript into the viewport.
func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderTranscript())
}

// Session returns the session behind the view.
func (m Model) Session() *session.Session {
	return m.session
}

// lastLatency formats the most recent call latency for the status line.
func lastLatency(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
