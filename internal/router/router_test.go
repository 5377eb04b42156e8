package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetActiveTab(t *testing.T) {
	r := New(Chat)
	assert.Equal(t, Chat, r.Active())

	assert.True(t, r.SetActiveTab(Settings))
	assert.Equal(t, Settings, r.Active())
	assert.False(t, r.SetActiveTab(Settings), "already active")

	assert.False(t, r.SetActiveTab(Tab(9)))
	assert.Equal(t, Settings, r.Active(), "unknown tab is ignored")
}

func TestNextPrevWrap(t *testing.T) {
	r := New(Chat)
	assert.Equal(t, Upload, r.Next())
	assert.Equal(t, Settings, r.Next())
	assert.Equal(t, Chat, r.Next())
	assert.Equal(t, Settings, r.Prev())
}

func TestNewFallsBackToChat(t *testing.T) {
	assert.Equal(t, Chat, New(Tab(-1)).Active())
}

func TestParseTab(t *testing.T) {
	for _, tab := range Tabs() {
		got, err := ParseTab(tab.String())
		require.NoError(t, err)
		assert.Equal(t, tab, got)
	}
	got, err := ParseTab(" SETTINGS ")
	require.NoError(t, err)
	assert.Equal(t, Settings, got)

	_, err = ParseTab("history")
	assert.Error(t, err)
}
