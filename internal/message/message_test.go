package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := &Message{
		Type:  TypeItems,
		Items: []Item{NewItem("line one\nline \"two\"", now), NewItem("ünïcödé", now)},
	}
	raw, err := msg.Encode()
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeItems, got.Type)
	assert.Equal(t, []string{"line one\nline \"two\"", "ünïcödé"}, got.Texts())
	assert.Equal(t, "line one\nline \"two\"", got.TextPayload())
	assert.True(t, got.Items[0].CreatedAt.Equal(now))
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("not json"))
	require.Error(t, err)

	_, err = Decode([]byte(`{"query":"x"}`))
	require.Error(t, err, "type is required")
}

func TestErr(t *testing.T) {
	assert.NoError(t, (&Message{Type: TypeOK}).Err())

	err := Errorf("no item at %d", 3).Err()
	require.Error(t, err)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "no item at 3", remote.Msg)
}

func TestTexts_SkipsUndecodable(t *testing.T) {
	m := &Message{Type: TypeItems, Items: []Item{{Data: "%%%"}, NewItem("ok", time.Time{})}}
	assert.Equal(t, []string{"ok"}, m.Texts())
	assert.Empty(t, (&Message{Type: TypeOK}).TextPayload())
}
