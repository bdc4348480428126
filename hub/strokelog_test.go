package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrokeLog_SnapshotIsStable(t *testing.T) {
	var l strokeLog
	l.append(stroke(1))
	l.append(stroke(2))

	snap := l.snapshot()
	l.append(stroke(3))
	snap[0].Color = "red"

	assert.Len(t, snap, 2)
	assert.Equal(t, 3, l.len())
	assert.Equal(t, "#000000", l.snapshot()[0].Color)
}

func TestStrokeLog_EmptySnapshotIsNotNil(t *testing.T) {
	var l strokeLog
	assert.NotNil(t, l.snapshot())
	assert.Empty(t, l.snapshot())
}
