package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio/pkg/core"
)

func TestSource_Forwards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 1)
	src := NewSource(in)
	require.NoError(t, src.Start(ctx))

	in <- core.Event{Type: core.EventModify, ID: "posts/newcomb"}

	select {
	case e := <-src.Events():
		got, ok := e.(core.Event)
		require.True(t, ok)
		assert.Equal(t, "posts/newcomb", got.ID)
		assert.Equal(t, "MODIFY posts/newcomb", e.String())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	close(in)
	select {
	case _, open := <-src.Events():
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("source did not close")
	}
}
