package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	t.Run("reports at intervals", func(t *testing.T) {
		var buf strings.Builder
		tracker := NewProgressTracker(&buf, 100, 10)
		tracker.Start()

		tracker.Update(5)
		assert.Empty(t, buf.String())

		tracker.Update(10)
		assert.Contains(t, buf.String(), "10/100")

		tracker.Increment(90)
		assert.Contains(t, buf.String(), "100/100")
	})

	t.Run("finish prints final progress", func(t *testing.T) {
		var buf strings.Builder
		tracker := NewProgressTracker(&buf, 10, 100)
		tracker.Start()
		tracker.Update(3)
		tracker.Finish()

		assert.Contains(t, buf.String(), "10/10")
		assert.Contains(t, buf.String(), "100.0%")
	})

	t.Run("caps at total", func(t *testing.T) {
		var buf strings.Builder
		tracker := NewProgressTracker(&buf, 10, 1)
		tracker.Start()
		tracker.Update(50)

		assert.Contains(t, buf.String(), "10/10")
	})

	t.Run("ignores updates before start", func(t *testing.T) {
		var buf strings.Builder
		tracker := NewProgressTracker(&buf, 10, 1)
		tracker.Update(5)
		tracker.Increment(5)

		assert.Empty(t, buf.String())
		assert.Zero(t, tracker.Elapsed())
	})
}
