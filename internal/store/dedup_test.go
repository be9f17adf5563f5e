package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDedup_SeenAfterMark(t *testing.T) {
	d := NewDedup(100, time.Minute)

	assert.False(t, d.Seen("2023/1"))
	d.Mark("2023/1")
	assert.True(t, d.Seen("2023/1"))
	assert.False(t, d.Seen("2023/2"))
	assert.Equal(t, 1, d.Len())
}

func TestDedup_ExpiredKeysAreForgotten(t *testing.T) {
	d := NewDedup(100, 10*time.Millisecond)
	d.Mark("2023/1")
	assert.True(t, d.Seen("2023/1"))

	time.Sleep(20 * time.Millisecond)
	assert.False(t, d.Seen("2023/1"))
}

func TestDedup_EvictsOverCapacity(t *testing.T) {
	d := NewDedup(3, time.Minute)
	for i := 0; i < 5; i++ {
		d.Mark(fmt.Sprintf("key-%d", i))
	}
	assert.Equal(t, 3, d.Len())
	// oldest two evicted, newest three kept
	assert.False(t, d.Seen("key-0"))
	assert.False(t, d.Seen("key-1"))
	assert.True(t, d.Seen("key-4"))
}

func TestDedup_MarkRefreshesTTLAndPosition(t *testing.T) {
	d := NewDedup(2, time.Minute)
	d.Mark("a")
	d.Mark("b")
	d.Mark("a") // refresh: "a" becomes most recent
	d.Mark("c") // evicts "b"
	assert.True(t, d.Seen("a"))
	assert.False(t, d.Seen("b"))
	assert.True(t, d.Seen("c"))
}
