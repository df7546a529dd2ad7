package walk

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xgrep/xgrep/internal/model"
)

func TestDequePushPopLIFO(t *testing.T) {
	d := newDeque(4)
	a := &model.InputSource{Path: "a"}
	b := &model.InputSource{Path: "b"}
	require.True(t, d.pushBottom(a))
	require.True(t, d.pushBottom(b))

	got, ok := d.popBottom()
	require.True(t, ok)
	require.Equal(t, "b", got.Path)

	got, ok = d.popBottom()
	require.True(t, ok)
	require.Equal(t, "a", got.Path)

	_, ok = d.popBottom()
	require.False(t, ok)
}

func TestDequeStealTakesOldest(t *testing.T) {
	d := newDeque(4)
	a := &model.InputSource{Path: "a"}
	b := &model.InputSource{Path: "b"}
	d.pushBottom(a)
	d.pushBottom(b)

	got, ok := d.popTop()
	require.True(t, ok)
	require.Equal(t, "a", got.Path)
}

func TestDequeEmpty(t *testing.T) {
	d := newDeque(4)
	require.True(t, d.empty())
	d.pushBottom(&model.InputSource{Path: "a"})
	require.False(t, d.empty())
}
