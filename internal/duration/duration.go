// Package duration converts the duration spellings found in task models into
// canonical integer milliseconds.
//
// Accepted inputs:
//   - integers: already milliseconds
//   - floats: seconds, rounded half to even
//   - time.Duration
//   - strings: "<n>ms" (fractional n is truncated) or "H:M:S" (fractional seconds)
//
// Anything else is rejected; there is no silent coercion.
package duration

import (
	stderrors "errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/rtcheck/internal/errors"
)

// Millis is a duration in whole milliseconds.
type Millis int64

var (
	// ErrNil is returned when there is no value to normalize.
	ErrNil = stderrors.New("nil duration")
	// ErrUnsupportedType is the cause for values of a type with no duration reading.
	ErrUnsupportedType = stderrors.New("unsupported duration type")
	// ErrUnsupportedFormat is the cause for strings matching no known spelling.
	ErrUnsupportedFormat = stderrors.New("unsupported duration format")
)

var msPattern = regexp.MustCompile(`(?i)^([0-9]+(?:\.[0-9]+)?)\s*ms$`)

// Ptr returns a pointer to m.
func Ptr(m Millis) *Millis {
	return &m
}

// String renders the value as "<n>ms".
func (m Millis) String() string {
	return strconv.FormatInt(int64(m), 10) + "ms"
}

// Int returns the value as a plain int64.
func (m Millis) Int() int64 {
	return int64(m)
}

// Normalize converts v to milliseconds.
func Normalize(v any) (Millis, error) {
	switch val := v.(type) {
	case nil:
		return 0, errors.Wrap(errors.ErrCodeDurationType, "cannot convert <nil> to milliseconds", ErrNil)
	case Millis:
		return val, nil
	case int:
		return Millis(val), nil
	case int32:
		return Millis(val), nil
	case int64:
		return Millis(val), nil
	case uint:
		return Millis(val), nil
	case uint32:
		return Millis(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return 0, errors.New(errors.ErrCodeDurationRange, fmt.Sprintf("duration %d overflows milliseconds", val))
		}
		return Millis(val), nil
	case float32:
		return secondsToMillis(float64(val))
	case float64:
		return secondsToMillis(val)
	case time.Duration:
		return secondsToMillis(val.Seconds())
	case string:
		return Parse(val)
	default:
		return 0, errors.Wrap(errors.ErrCodeDurationType,
			fmt.Sprintf("cannot convert %v (%T) to milliseconds", v, v), ErrUnsupportedType)
	}
}

func secondsToMillis(s float64) (Millis, error) {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, errors.New(errors.ErrCodeDurationRange, fmt.Sprintf("duration %v is not finite", s))
	}
	return Millis(math.RoundToEven(s * 1000)), nil
}

// Parse reads the textual spellings "<n>ms" and "H:M:S".
func Parse(s string) (Millis, error) {
	text := strings.TrimSpace(s)

	if m := msPattern.FindStringSubmatch(text); m != nil {
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeDurationFormat, fmt.Sprintf("cannot convert %q to milliseconds", s), err)
		}
		return Millis(math.Trunc(f)), nil
	}

	if ms, ok := parseClock(text); ok {
		return ms, nil
	}

	return 0, errors.Wrap(errors.ErrCodeDurationFormat,
		fmt.Sprintf("cannot convert %q to milliseconds", s), ErrUnsupportedFormat).
		WithSuggestion(`Use "<n>ms" or "H:M:S"`)
}

func parseClock(text string) (Millis, bool) {
	parts := strings.Split(text, ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || h < 0 {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || m < 0 {
		return 0, false
	}
	sec, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil || sec < 0 || math.IsInf(sec, 0) || math.IsNaN(sec) {
		return 0, false
	}
	total := float64(h)*3600 + float64(m)*60 + sec
	return Millis(math.RoundToEven(total * 1000)), true
}

// UnmarshalYAML reads a scalar node: !!int as milliseconds, !!float as
// seconds, !!str through Parse.
func (m *Millis) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errors.New(errors.ErrCodeDurationType,
			fmt.Sprintf("line %d: duration must be a scalar", value.Line))
	}

	var (
		ms  Millis
		err error
	)
	switch value.ShortTag() {
	case "!!int":
		var i int64
		if err = value.Decode(&i); err == nil {
			ms, err = Normalize(i)
		}
	case "!!float":
		var f float64
		if err = value.Decode(&f); err == nil {
			ms, err = Normalize(f)
		}
	case "!!str":
		ms, err = Parse(value.Value)
	default:
		err = errors.Wrap(errors.ErrCodeDurationType,
			fmt.Sprintf("cannot convert %s %q to milliseconds", value.ShortTag(), value.Value), ErrUnsupportedType)
	}
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}

	*m = ms
	return nil
}

// MarshalYAML writes the canonical "<n>ms" form.
func (m Millis) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}
