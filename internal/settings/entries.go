package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Entry is one display row.
type Entry struct {
	Key   string
	Label string
	Value string
}

var knownKeys = []struct {
	key, label string
}{
	{"ollama_base_url", "Ollama base URL"},
	{"chat_model", "Chat model"},
	{"embed_model", "Embedding model"},
	{"retrieval_k", "Retrieval k"},
}

// Entries lists cfg with the known keys first, then the rest sorted by key.
func Entries(cfg map[string]any) []Entry {
	if len(cfg) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(cfg))
	seen := make(map[string]bool, len(knownKeys))
	for _, k := range knownKeys {
		v, ok := cfg[k.key]
		if !ok {
			continue
		}
		seen[k.key] = true
		out = append(out, Entry{Key: k.key, Label: k.label, Value: FormatValue(v)})
	}

	rest := make([]string, 0, len(cfg)-len(seen))
	for k := range cfg {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out = append(out, Entry{Key: k, Label: k, Value: FormatValue(cfg[k])})
	}
	return out
}

// FormatValue renders a decoded JSON value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}
