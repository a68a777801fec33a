package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: other tests move the shared entropy to other milliseconds.
func TestNewIsSortable(t *testing.T) {
	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		require.Len(t, next, 26)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestNewAtRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 20, 16, 30, 0, 123_000_000, time.UTC)
	got, err := Time(NewAt(at))
	require.NoError(t, err)
	assert.True(t, at.Equal(got), "got %s", got)

	assert.Less(t, NewAt(at), NewAt(at.Add(time.Second)))
}

func TestTimeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Time("not-a-run-id")
	assert.Error(t, err)
}
