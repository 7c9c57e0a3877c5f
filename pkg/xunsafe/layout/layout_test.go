package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vasil-sd/arenagc/pkg/xunsafe/layout"
)

func TestAlign(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8, layout.RoundUp(8, 8))
	assert.Equal(t, 16, layout.RoundUp(9, 8))
	assert.Equal(t, 16, layout.RoundUp(10, 8))
	assert.Equal(t, 16, layout.RoundUp(16, 8))

	assert.Equal(t, 0, layout.Padding(8, 8))
	assert.Equal(t, 7, layout.Padding(9, 8))
	assert.Equal(t, 1, layout.Padding(15, 8))
	assert.Equal(t, 0, layout.Padding(16, 8))
}

func TestOf(t *testing.T) {
	t.Parallel()

	l := layout.Of[int64]()
	assert.Equal(t, 8, l.Size)
	assert.Equal(t, 8, l.Align)

	small := layout.Layout{Size: 4, Align: 4}
	assert.Equal(t, layout.Layout{Size: 8, Align: 8}, l.Max(small))
}
