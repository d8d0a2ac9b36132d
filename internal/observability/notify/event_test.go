package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanout_JoinsErrors(t *testing.T) {
	var delivered []string
	ok := SinkFunc(func(_ context.Context, e OverrideEvent) error {
		delivered = append(delivered, e.Action)
		return nil
	})
	boom := errors.New("boom")
	bad := SinkFunc(func(context.Context, OverrideEvent) error { return boom })

	err := Fanout{ok, nil, bad, ok}.SendOverride(context.Background(), OverrideEvent{Action: "HALT"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"HALT", "HALT"}, delivered)
}

func TestRetry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = Retry(context.Background(), 0, func(context.Context) error {
		calls++
		return errors.New("down")
	})
	require.EqualError(t, err, "down")
	assert.Equal(t, 1, calls)
}

func TestOverrideEvent_Severity(t *testing.T) {
	assert.Equal(t, SeverityCritical, OverrideEvent{Action: "HALT"}.Severity())
	assert.Equal(t, SeverityInfo, OverrideEvent{Action: "RESUME"}.Severity())
}
