package agents

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// Option keys of the file appender.
const (
	OptionPath                  = "path"
	OptionExpectedReceivePeriod = "expected_receive_period_in_days"
)

const (
	ErrPathRequired   = "The `path` key is required."
	ErrPeriodRequired = "Please provide 'expected_receive_period_in_days' to indicate how many days can pass before this Agent is considered to be not working"
)

// ConfigurationError lists every problem found in a set of options.
type ConfigurationError struct {
	Messages []string
}

func (e *ConfigurationError) Error() string {
	return "invalid options: " + strings.Join(e.Messages, "; ")
}

// Has reports whether msg is one of the collected messages.
func (e *ConfigurationError) Has(msg string) bool {
	for _, m := range e.Messages {
		if m == msg {
			return true
		}
	}
	return false
}

// Config is the resolved, concrete form of the options used by Receive and Working.
type Config struct {
	Path                      string
	ExpectedReceivePeriodDays int
}

func cloneOptions(opts map[string]any) map[string]any {
	out := make(map[string]any, len(opts))
	for k, v := range opts {
		out[k] = v
	}
	return out
}

// present mirrors the framework's notion of a filled option: nil, false,
// blank strings and empty collections are absent.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case bool:
		return t
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// toInt coerces an option value to an integer. Strings are read up to the
// first non-digit ("5 days" is 5, "abc" is 0).
func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint:
		return int(t)
	case uint32:
		return int(t)
	case uint64:
		return int(t)
	case float32:
		return int(t)
	case float64:
		return int(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
		if f, err := t.Float64(); err == nil {
			return int(f)
		}
		return leadingInt(t.String())
	case string:
		return leadingInt(t)
	default:
		return 0
	}
}

func leadingInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var digits strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			digits.WriteByte(c)
			continue
		}
		// single underscores between digits are allowed
		if c == '_' && digits.Len() > 0 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
			continue
		}
		break
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	if neg {
		return -n
	}
	return n
}

// toString coerces an event payload value to text.
func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
