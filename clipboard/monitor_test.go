package clipboard

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, c)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestMonitor() *Monitor {
	return NewMonitor(&Processor{log: zap.NewNop()}, zap.NewNop())
}

func TestMonitor_HandleImageSkipsRepeats(t *testing.T) {
	m := newTestMonitor()
	data := pngBytes(t, color.Black)

	m.handleImage(m.changes, data)
	m.handleImage(m.changes, data)

	require.Len(t, m.changes, 1)
	img := <-m.Changes()
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestMonitor_HandleImageDropsWhenFull(t *testing.T) {
	m := newTestMonitor()

	m.handleImage(m.changes, pngBytes(t, color.Black))
	m.handleImage(m.changes, pngBytes(t, color.White))

	assert.Len(t, m.changes, 1)
}

func TestMonitor_IgnoresOwnImage(t *testing.T) {
	m := newTestMonitor()
	data := pngBytes(t, color.Black)
	m.processor.written = imageID(data)

	m.handleImage(m.changes, data)
	assert.Empty(t, m.changes)
}

func TestMonitor_IgnoresInvalidData(t *testing.T) {
	m := newTestMonitor()

	m.handleImage(m.changes, nil)
	m.handleImage(m.changes, []byte("not a png"))
	assert.Empty(t, m.changes)
}

func TestMonitor_StartWithoutNativeClipboard(t *testing.T) {
	m := newTestMonitor()
	assert.ErrorIs(t, m.Start(), ErrImageUnsupported)
}

func TestProcessor_FallbackImageUnsupported(t *testing.T) {
	p := &Processor{log: zap.NewNop()}

	assert.ErrorIs(t, p.CopyImage([]byte{1}), ErrImageUnsupported)
	_, err := p.ReadImage()
	assert.ErrorIs(t, err, ErrImageUnsupported)
}

func TestMonitor_ForwardClosesChangesWhenWatchEnds(t *testing.T) {
	m := newTestMonitor()
	in := make(chan []byte, 2)
	in <- pngBytes(t, color.Black)
	close(in)

	m.forward(in, m.changes)

	img, ok := <-m.Changes()
	require.True(t, ok)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, ok = <-m.Changes()
	assert.False(t, ok)
}
