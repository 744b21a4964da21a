package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokercoach/internal/table"
)

func newTestModel(t *testing.T, connect func() error) *Model {
	t.Helper()
	return New(table.New(nil, log.Default()), connect, log.Default())
}

// The engine dial runs as a program command, so nothing delivers a
// message to the program before its loop is running.
func TestInitIncludesConnectCommand(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, func() error { return nil })
	batch, ok := m.Init()().(tea.BatchMsg)
	require.True(t, ok)

	var status []tea.Msg
	for _, cmd := range batch {
		if msg, ok := cmd().(EngineStatusMsg); ok {
			status = append(status, msg)
		}
	}
	require.Len(t, status, 1)
	assert.Equal(t, EngineStatusMsg{Connected: true}, status[0])
}

func TestInitWithoutConnectorStaysOffline(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, nil)
	cmd := m.Init()
	require.NotNil(t, cmd)
	_, isBatch := cmd().(tea.BatchMsg)
	assert.False(t, isBatch)
}

func TestConnectCommandReportsFailure(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, func() error { return errors.New("connection refused") })
	assert.Equal(t, EngineStatusMsg{Connected: false}, m.connectCmd()())
}

func TestEngineStatusUpdatesIndicator(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, nil)
	m.width, m.height = 80, 24

	updated, _ := m.Update(EngineStatusMsg{Connected: true})
	model := updated.(*Model)
	assert.True(t, model.engineUp)
	assert.Contains(t, model.renderHeader(), "connected")

	updated, _ = model.Update(EngineStatusMsg{Connected: false})
	model = updated.(*Model)
	assert.Contains(t, model.renderHeader(), "offline")
}
