package index

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_BasicFlow(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Start()
	tracker.Update(10)
	assert.Contains(t, buf.String(), "10/100")

	tracker.Update(50)
	assert.Contains(t, buf.String(), "50/100 (50.0%)")

	tracker.Finish()
	out := buf.String()
	assert.Contains(t, out, "100/100 (100.0%)")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestProgressTracker_ReportInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 25)

	tracker.Start()
	tracker.Update(10)
	assert.Empty(t, buf.String())

	tracker.Update(24)
	assert.Empty(t, buf.String())

	tracker.Update(25)
	assert.Contains(t, buf.String(), "25/100")
}

func TestProgressTracker_Increment(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 50, 10)

	tracker.Start()
	tracker.Increment(4)
	tracker.Increment(4)
	assert.Empty(t, buf.String())

	tracker.Increment(4)
	assert.Contains(t, buf.String(), "12/50")
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 20, 5)

	tracker.Start()
	tracker.Update(35)
	assert.Contains(t, buf.String(), "20/20 (100.0%)")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Update(50)
	tracker.Increment(10)
	tracker.Finish()
	assert.Empty(t, buf.String())
	assert.Equal(t, time.Duration(0), tracker.Elapsed())
}

func TestProgressTracker_Elapsed(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Start()
	time.Sleep(10 * time.Millisecond)
	assert.GreaterOrEqual(t, tracker.Elapsed(), 10*time.Millisecond)
}
