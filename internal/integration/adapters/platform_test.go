package adapters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperatorDirectory(t *testing.T) {
	dir := NewOperatorDirectory([]string{"op-1", " op-2 ", ""})

	assert.True(t, dir.IsOperator("op-1"))
	assert.True(t, dir.IsOperator("op-2"))
	assert.False(t, dir.IsOperator(""))
	assert.False(t, dir.IsOperator("member"))
}

func TestSystemClock(t *testing.T) {
	now := SystemClock{}.Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}
