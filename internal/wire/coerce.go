package wire

import (
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/AgentOS/telemetry/event"
)

// normalizeValue prepares an input/output value for the wire. Conversation
// messages become plain role/content maps without type tags, strings are
// best-effort parsed as JSON so structured payloads survive a round-trip
// through fmt, and everything else passes through for JSON marshalling.
// Values the JSON library cannot handle fall back to their literal string
// form.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case event.Message:
		return messageShape(x)
	case *event.Message:
		if x == nil {
			return nil
		}
		return messageShape(*x)
	case []event.Message:
		out := make([]map[string]string, 0, len(x))
		for _, m := range x {
			out = append(out, messageShape(m))
		}
		return out
	case string:
		var parsed any
		if err := sonic.UnmarshalString(x, &parsed); err == nil {
			return parsed
		}
		return x
	default:
		if _, err := sonic.Marshal(x); err == nil {
			return x
		}
		s := fmt.Sprint(x)
		var parsed any
		if err := sonic.UnmarshalString(s, &parsed); err == nil {
			return parsed
		}
		return s
	}
}

func messageShape(m event.Message) map[string]string {
	return map[string]string{"role": m.Role, "content": m.Content}
}

// coerceMetadata flattens metadata values to strings for transport. Numeric
// and boolean typing is intentionally lost on the wire. The result is never
// nil: bodies always carry a metadata object.
func coerceMetadata(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = coerceString(v)
	}
	return out
}

// coerceParams is coerceMetadata for model parameters, except absent maps
// stay null on the wire.
func coerceParams(m map[string]any) map[string]string {
	if m == nil {
		return nil
	}
	return coerceMetadata(m)
}

func coerceString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		if b, err := sonic.Marshal(x); err == nil {
			return string(b)
		}
		return fmt.Sprint(x)
	}
}
