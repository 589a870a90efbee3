// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/pnuchat/internal/answer"
	"github.com/jeranaias/pnuchat/internal/dispatch"
	"github.com/jeranaias/pnuchat/internal/session"
	"github.com/jeranaias/pnuchat/internal/transcript"
	"github.com/jeranaias/pnuchat/internal/ui/styles"
)

// =============================================================================
// HELPERS
// =============================================================================

func newTestModel(t *testing.T, a answer.Answerer, policy dispatch.Policy) (Model, *[]string) {
	t.Helper()
	var copied []string
	sess := session.New(a, session.Config{Policy: policy})
	m := New(sess, styles.NewTheme("dark"), Options{
		MarkdownStyle: "notty",
		CopyFunc: func(s string) error {
			copied = append(copied, s)
			return nil
		},
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), &copied
}

func echoAnswerer() answer.Answerer {
	return answer.AnswererFunc(func(_ context.Context, q string) (string, error) {
		return "re: " + q, nil
	})
}

func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

// collect runs cmd and any batched commands, returning the messages of type T.
func collect[T any](cmd tea.Cmd) []T {
	if cmd == nil {
		return nil
	}
	var out []T
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect[T](c)...)
		}
	case T:
		out = append(out, msg)
	}
	return out
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestModel_SubmitAndAnswer(t *testing.T) {
	m, _ := newTestModel(t, echoAnswerer(), dispatch.PolicyReject)
	m = typeText(m, "Hello")
	assert.Equal(t, "Hello", m.session.Draft())

	m, cmd := press(m, tea.KeyEnter)

	assert.Equal(t, "", m.input.Value(), "accepted submit clears the draft")
	assert.True(t, m.session.Pending())
	require.Len(t, m.session.Transcript(), 1)
	assert.Contains(t, m.View(), "답변 생성 중...")

	answers := collect[answerMsg](cmd)
	require.Len(t, answers, 1)

	next, follow := m.Update(answers[0])
	m = next.(Model)
	assert.Nil(t, follow)

	turns := m.session.Transcript()
	require.Len(t, turns, 2)
	assert.Equal(t, "re: Hello", turns[1].Text)
	assert.False(t, m.session.Pending())

	view := m.View()
	assert.Contains(t, view, "Hello")
	assert.Contains(t, view, "re: Hello")
	assert.NotContains(t, view, "답변 생성 중...")
}

func TestModel_BlankSubmitIsNoop(t *testing.T) {
	m, _ := newTestModel(t, echoAnswerer(), dispatch.PolicyReject)
	m = typeText(m, "   ")

	m, cmd := press(m, tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.Empty(t, m.session.Transcript())
	assert.False(t, m.session.Pending())
	assert.Equal(t, "   ", m.input.Value())
}

func TestModel_FailureTurn(t *testing.T) {
	failing := answer.AnswererFunc(func(context.Context, string) (string, error) {
		return "", &answer.Error{Kind: answer.KindServer, Status: 502}
	})
	m, _ := newTestModel(t, failing, dispatch.PolicyReject)
	m = typeText(m, "Ping")
	m, cmd := press(m, tea.KeyEnter)

	next, _ := m.Update(collect[answerMsg](cmd)[0])
	m = next.(Model)

	turns := m.session.Transcript()
	require.Len(t, turns, 2)
	assert.Equal(t, "서버 연결 실패", turns[1].Text)
	assert.Equal(t, "server", turns[1].Failure)
	assert.Contains(t, m.View(), "서버 연결 실패")
	assert.Equal(t, 1, m.session.Stats().Failures)
}

func TestModel_BusyRejectKeepsDraft(t *testing.T) {
	m, _ := newTestModel(t, echoAnswerer(), dispatch.PolicyReject)
	m = typeText(m, "one")
	m, _ = press(m, tea.KeyEnter)

	m = typeText(m, "two")
	m, cmd := press(m, tea.KeyEnter)

	assert.Equal(t, "two", m.input.Value())
	assert.Len(t, m.session.Transcript(), 1)
	assert.Contains(t, m.notice, "기다리는 중")
	assert.NotNil(t, cmd, "notice expiry is scheduled")
}

func TestModel_QueuePolicyRunsNextCall(t *testing.T) {
	m, _ := newTestModel(t, echoAnswerer(), dispatch.PolicyQueue)
	m = typeText(m, "one")
	m, first := press(m, tea.KeyEnter)
	m = typeText(m, "two")
	m, _ = press(m, tea.KeyEnter)

	assert.Equal(t, "", m.input.Value())
	assert.Contains(t, m.notice, "대기열")
	assert.Len(t, m.session.Transcript(), 2)

	next, followUp := m.Update(collect[answerMsg](first)[0])
	m = next.(Model)
	require.NotNil(t, followUp, "queued call starts after the first resolves")
	assert.True(t, m.session.Pending())

	next, _ = m.Update(collect[answerMsg](followUp)[0])
	m = next.(Model)

	var texts []string
	for _, turn := range m.session.Transcript() {
		texts = append(texts, turn.Text)
	}
	assert.Equal(t, []string{"one", "two", "re: one", "re: two"}, texts)
	assert.False(t, m.session.Pending())
}

func TestModel_StaleAnswerIgnored(t *testing.T) {
	m, _ := newTestModel(t, echoAnswerer(), dispatch.PolicyReject)
	m = typeText(m, "one")
	m, cmd := press(m, tea.KeyEnter)
	out := collect[answerMsg](cmd)[0]

	next, _ := m.Update(out)
	m = next.(Model)
	next, _ = m.Update(out)
	m = next.(Model)

	assert.Len(t, m.session.Transcript(), 2)
}

// =============================================================================
// CLIPBOARD AND NOTICES
// =============================================================================

func TestModel_CopyLastAnswer(t *testing.T) {
	m, copied := newTestModel(t, echoAnswerer(), dispatch.PolicyReject)

	m, cmd := press(m, tea.KeyCtrlY)
	assert.Empty(t, collect[copyMsg](cmd))
	assert.Contains(t, m.notice, "복사할 답변이 없습니다")

	m = typeText(m, "Hello")
	m, cmd = press(m, tea.KeyEnter)
	next, _ := m.Update(collect[answerMsg](cmd)[0])
	m = next.(Model)

	m, cmd = press(m, tea.KeyCtrlY)
	msgs := collect[copyMsg](cmd)
	require.Len(t, msgs, 1)
	next, _ = m.Update(msgs[0])
	m = next.(Model)

	assert.Equal(t, []string{"re: Hello"}, *copied)
	assert.Contains(t, m.notice, "복사했습니다")
	assert.Len(t, m.session.Transcript(), 2, "copy never touches the transcript")
}

func TestModel_CopyFailureNotice(t *testing.T) {
	m, _ := newTestModel(t, echoAnswerer(), dispatch.PolicyReject)
	next, _ := m.Update(copyMsg{err: errors.New("no clipboard utility")})
	m = next.(Model)
	assert.Contains(t, m.notice, "no clipboard utility")
}

func TestModel_NoticeExpiry(t *testing.T) {
	m, _ := newTestModel(t, echoAnswerer(), dispatch.PolicyReject)
	next, _ := m.setNotice("first")
	m = next.(Model)
	next, _ = m.setNotice("second")
	m = next.(Model)

	next, _ = m.Update(noticeExpiredMsg{seq: m.noticeSeq - 1})
	m = next.(Model)
	assert.Equal(t, "second", m.notice, "an older expiry leaves a newer notice")

	next, _ = m.Update(noticeExpiredMsg{seq: m.noticeSeq})
	m = next.(Model)
	assert.Equal(t, "", m.notice)
}

// =============================================================================
// LAYOUT
// =============================================================================

func TestModel_Resize(t *testing.T) {
	m, _ := newTestModel(t, echoAnswerer(), dispatch.PolicyReject)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)

	assert.Equal(t, 120, m.viewport.Width)
	assert.Equal(t, 35, m.viewport.Height)
	assert.Equal(t, 114, m.input.Width)
}

func TestModel_EmptyState(t *testing.T) {
	m, _ := newTestModel(t, echoAnswerer(), dispatch.PolicyReject)
	view := m.View()
	assert.Contains(t, view, "PNU AI Assistant")
	assert.Contains(t, view, "무엇이든 물어보세요")
	assert.Equal(t, "질문을 입력하세요...", m.input.Placeholder)
}

func TestModel_ReloadAppliesDisplaySettings(t *testing.T) {
	m, _ := newTestModel(t, echoAnswerer(), dispatch.PolicyReject)

	next, cmd := m.Update(ReloadMsg{Title: "부산대 도우미", Placeholder: "무엇이든 물어보세요"})
	m = next.(Model)

	assert.NotNil(t, cmd)
	assert.Equal(t, "설정을 다시 불러왔습니다", m.notice)
	assert.Equal(t, "무엇이든 물어보세요", m.input.Placeholder)
	assert.Equal(t, "답변 생성 중...", m.opts.LoadingText, "empty fields keep their value")
	assert.Contains(t, m.View(), "부산대 도우미")
}

func TestModel_ReloadErrorKeepsSettings(t *testing.T) {
	m, _ := newTestModel(t, echoAnswerer(), dispatch.PolicyReject)

	next, _ := m.Update(ReloadMsg{Title: "ignored", Err: errors.New("toml: line 3\nbad key")})
	m = next.(Model)

	assert.Equal(t, "PNU AI Assistant", m.opts.Title)
	assert.True(t, strings.HasPrefix(m.notice, "설정 파일 오류: "))
	assert.NotContains(t, m.notice, "\n")
}

func TestModel_QuitKey(t *testing.T) {
	m, _ := newTestModel(t, echoAnswerer(), dispatch.PolicyReject)
	_, cmd := press(m, tea.KeyEsc)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRenderTurn_UserKeepsTypedText(t *testing.T) {
	m, _ := newTestModel(t, echoAnswerer(), dispatch.PolicyReject)
	out := m.renderTurn(transcript.NewUserTurn("부산대학교"))
	assert.True(t, strings.Contains(out, "부산대학교"))
}
