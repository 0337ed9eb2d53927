package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveVig2(t *testing.T) {
	a, b := RemoveVig2(1.90, 1.90)
	assert.InDelta(t, 0.5, a, 1e-12)
	assert.InDelta(t, 0.5, b, 1e-12)

	a, b = RemoveVig2(1.5, 3.0)
	assert.InDelta(t, 2.0/3.0, a, 1e-12)
	assert.InDelta(t, 1.0/3.0, b, 1e-12)

	a, b = RemoveVig2(0, 2.0)
	assert.Zero(t, a)
	assert.Zero(t, b)
}

func TestRemoveVig3(t *testing.T) {
	h, d, a := RemoveVig3(2.10, 3.40, 3.60)
	assert.InDelta(t, 1.0, h+d+a, 1e-12)
	assert.Greater(t, h, a)

	h, d, a = RemoveVig3(2.0, -1, 3.0)
	assert.Zero(t, h+d+a)
}

func TestDrawNoBet(t *testing.T) {
	h, a := DrawNoBet(0.45, 0.25)
	assert.InDelta(t, 0.45/0.70, h, 1e-12)
	assert.InDelta(t, 0.25/0.70, a, 1e-12)
	assert.InDelta(t, 1.0, h+a, 1e-12)

	h, a = DrawNoBet(0, 0)
	assert.Zero(t, h)
	assert.Zero(t, a)
}
