package duration

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/rtcheck/internal/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Millis
	}{
		{"int is milliseconds", 100, 100},
		{"int64 is milliseconds", int64(250), 250},
		{"float is seconds", 0.08, 80},
		{"float rounds", 0.0304, 30},
		{"time.Duration", 30 * time.Millisecond, 30},
		{"time.Duration rounds", 1500 * time.Microsecond, 2},
		{"time.Duration tie rounds to even", 2500 * time.Microsecond, 2},
		{"float tie rounds down to even", 0.0005, 0},
		{"float tie rounds to even", 0.0025, 2},
		{"float tie rounds up to even", 0.0035, 4},
		{"ms string", "100ms", 100},
		{"ms string with space and case", "  20 MS ", 20},
		{"fractional ms truncates", "12.9ms", 12},
		{"clock string", "0:0:1.5", 1500},
		{"clock string hours", "1:02:03", 3723000},
		{"clock string tie rounds to even", "0:0:0.0025", 2},
		{"Millis passthrough", Millis(7), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		code  errors.ErrorCode
		cause error
	}{
		{"nil", nil, errors.ErrCodeDurationType, ErrNil},
		{"bool", true, errors.ErrCodeDurationType, ErrUnsupportedType},
		{"seconds unit", "5s", errors.ErrCodeDurationFormat, ErrUnsupportedFormat},
		{"bare number string", "100", errors.ErrCodeDurationFormat, ErrUnsupportedFormat},
		{"negative ms", "-5ms", errors.ErrCodeDurationFormat, ErrUnsupportedFormat},
		{"two-part clock", "1:30", errors.ErrCodeDurationFormat, ErrUnsupportedFormat},
		{"garbage", "soon", errors.ErrCodeDurationFormat, ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.in)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "unexpected error: %v", err)
			assert.True(t, stderrors.Is(err, tt.cause), "unexpected cause: %v", err)
		})
	}
}

func TestMillisYAML(t *testing.T) {
	type task struct {
		Period   *Millis `yaml:"period"`
		Deadline *Millis `yaml:"deadline"`
		WCET     *Millis `yaml:"wcet"`
		Offset   *Millis `yaml:"offset"`
	}

	var got task
	err := yaml.Unmarshal([]byte("period: 100\ndeadline: 0.08\nwcet: \"30ms\"\noffset: ~\n"), &got)
	require.NoError(t, err)

	require.NotNil(t, got.Period)
	require.NotNil(t, got.Deadline)
	require.NotNil(t, got.WCET)
	assert.Nil(t, got.Offset)
	assert.Equal(t, Millis(100), *got.Period)
	assert.Equal(t, Millis(80), *got.Deadline)
	assert.Equal(t, Millis(30), *got.WCET)

	out, err := yaml.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(out), "period: 100ms")
}

func TestMillisYAMLRejectsUnknownUnit(t *testing.T) {
	var got struct {
		Period Millis `yaml:"period"`
	}
	err := yaml.Unmarshal([]byte("period: 2min\n"), &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeDurationFormat))
}

func TestMillisString(t *testing.T) {
	assert.Equal(t, "150ms", Millis(150).String())
	assert.Equal(t, int64(150), Ptr(150).Int())
}
