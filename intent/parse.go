package intent

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// structuredOutput is the JSON shape requested from providers that answer
// in JSON mode instead of native function calling.
type structuredOutput struct {
	Action    string            `json:"action,omitempty"`
	Arguments map[string]string `json:"arguments,omitempty"`
	Reply     string            `json:"reply,omitempty"`
}

// parseModelOutput defensively interprets raw model text. Anything that is
// not a well-formed, known action becomes a direct reply; the turn never
// fails on a malformed payload.
func parseModelOutput(content string) Result {
	trimmed := strings.TrimSpace(content)
	// Models in JSON mode sometimes wrap output in a code fence.
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var out structuredOutput
	if err := sonic.UnmarshalString(trimmed, &out); err != nil {
		return Result{Reply: content}
	}

	if out.Action != "" {
		kind := Kind(out.Action)
		if !knownKind(kind) {
			return Result{Reply: content}
		}
		args := out.Arguments
		if args == nil {
			args = map[string]string{}
		}
		return Result{Action: &ActionRequest{Kind: kind, Args: args}}
	}

	if out.Reply != "" {
		return Result{Reply: out.Reply}
	}
	return Result{Reply: content}
}

// argString renders a function-call argument of any JSON type as a string.
func argString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
