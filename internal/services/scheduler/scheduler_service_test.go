package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestRegisterJob_ValidatesSchedule(t *testing.T) {
	s := NewService(arbor.NewLogger())

	assert.Error(t, s.RegisterJob("every_minute", "* * * * *", "", func() error { return nil }))
	assert.Error(t, s.RegisterJob("garbage", "not a schedule", "", func() error { return nil }))
	require.NoError(t, s.RegisterJob("hourly", "0 * * * *", "hourly job", func() error { return nil }))
	assert.Error(t, s.RegisterJob("hourly", "0 * * * *", "", func() error { return nil }))
}

func TestTriggerJob(t *testing.T) {
	s := NewService(arbor.NewLogger())

	done := make(chan struct{})
	require.NoError(t, s.RegisterJob(RatingBotJobName, "*/10 8-20 * * *", "rating bot", func() error {
		close(done)
		return errors.New("boom")
	}))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	require.NoError(t, s.TriggerJob(RatingBotJobName))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	status, err := s.GetJobStatus(RatingBotJobName)
	require.NoError(t, err)
	assert.Equal(t, "boom", status.LastError)
	assert.NotNil(t, status.LastRun)
	assert.False(t, status.IsRunning)

	assert.ErrorIs(t, s.TriggerJob("unknown"), ErrJobNotFound)
	assert.Len(t, s.GetAllJobStatuses(), 1)
}
