package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastStatusValid(t *testing.T) {
	assert.True(t, BroadcastStatusDraft.Valid())
	assert.True(t, BroadcastStatusDrafting.Valid())
	assert.True(t, BroadcastStatusSent.Valid())
	assert.False(t, BroadcastStatus("archived").Valid())
	assert.False(t, BroadcastStatus("").Valid())
}

func TestBroadcastStatusScanValue(t *testing.T) {
	var s BroadcastStatus
	require.NoError(t, s.Scan("drafting"))
	assert.Equal(t, BroadcastStatusDrafting, s)

	require.NoError(t, s.Scan([]byte("sent")))
	assert.Equal(t, BroadcastStatusSent, s)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, BroadcastStatus(""), s)

	require.Error(t, s.Scan(42))

	v, err := BroadcastStatusDraft.Value()
	require.NoError(t, err)
	assert.Equal(t, "draft", v)

	_, err = BroadcastStatus("bogus").Value()
	require.Error(t, err)
}

func TestBroadcastIsEditable(t *testing.T) {
	b := &Broadcast{Status: BroadcastStatusDraft}
	assert.True(t, b.IsEditable())

	b.Status = BroadcastStatusDrafting
	assert.True(t, b.IsEditable())

	b.Status = BroadcastStatusSent
	assert.False(t, b.IsEditable())
}

func TestBroadcastCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    BroadcastStatus
		to      BroadcastStatus
		allowed bool
	}{
		{BroadcastStatusDraft, BroadcastStatusDrafting, true},
		{BroadcastStatusDraft, BroadcastStatusSent, false},
		{BroadcastStatusDrafting, BroadcastStatusSent, true},
		{BroadcastStatusDrafting, BroadcastStatusDraft, true},
		{BroadcastStatusSent, BroadcastStatusDraft, false},
		{BroadcastStatusSent, BroadcastStatusDrafting, false},
	}

	for _, tt := range tests {
		b := &Broadcast{Status: tt.from}
		assert.Equal(t, tt.allowed, b.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
