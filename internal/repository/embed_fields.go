package repository

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/tgo/embedhub/internal/model"
)

var validate = validator.New()

// MaxEmbedStringLength caps every free-form string field of an embed.
const MaxEmbedStringLength = 255

// Normalizer converts a raw request value for one field into the value that is
// persisted. ok is false when the field must be left out of the write.
type Normalizer func(raw interface{}) (value interface{}, ok bool)

// writableEmbedFields is the only set of keys that user-supplied data may
// write. Keys double as column names.
var writableEmbedFields = []string{
	"enabled",
	"allowlist_domains",
	"allow_model_override",
	"allow_temperature_override",
	"allow_prompt_override",
	"max_chats_per_day",
	"max_chats_per_session",
	"chat_mode",
	"workspace_id",
	"chatIcon",
	"buttonColor",
	"userBgColor",
	"assistantBgColor",
	"brandImageUrl",
	"assistantName",
	"assistantIcon",
	"position",
	"windowHeight",
	"windowWidth",
	"textSize",
	"supportEmail",
	"defaultMessages",
}

var embedFieldNormalizers = map[string]Normalizer{
	"enabled":                    normalizeBool,
	"allow_model_override":       normalizeBool,
	"allow_temperature_override": normalizeBool,
	"allow_prompt_override":      normalizeBool,
	"max_chats_per_day":          normalizePositiveInt,
	"max_chats_per_session":      normalizePositiveInt,
	"workspace_id":               normalizePositiveInt,
	"chat_mode":                  normalizeChatMode,
	"allowlist_domains":          normalizeAllowlist,
	"defaultMessages":            normalizeDefaultMessages,
	"chatIcon":                   normalizeString,
	"buttonColor":                normalizeString,
	"userBgColor":                normalizeString,
	"assistantBgColor":           normalizeString,
	"brandImageUrl":              normalizeString,
	"assistantName":              normalizeString,
	"assistantIcon":              normalizeString,
	"position":                   normalizeString,
	"windowHeight":               normalizeString,
	"windowWidth":                normalizeString,
	"textSize":                   normalizeString,
	"supportEmail":               normalizeString,
}

// WritableEmbedFields returns the writable field names in a stable order.
func WritableEmbedFields() []string {
	fields := make([]string, len(writableEmbedFields))
	copy(fields, writableEmbedFields)
	return fields
}

// IsWritableEmbedField reports whether field may be written from user data.
func IsWritableEmbedField(field string) bool {
	for _, f := range writableEmbedFields {
		if f == field {
			return true
		}
	}
	return false
}

// ValidateEmbedFields keeps the writable keys of data and normalizes each of
// them. Unknown keys and values that fail normalization are dropped; this
// never fails. The result can be handed to gorm's Updates as-is.
func ValidateEmbedFields(data map[string]interface{}) map[string]interface{} {
	validated := make(map[string]interface{})
	for _, field := range writableEmbedFields {
		raw, present := data[field]
		if !present {
			continue
		}
		if value, ok := NormalizeEmbedField(field, raw); ok {
			validated[field] = value
		}
	}
	return validated
}

// NormalizeEmbedField runs the normalizer registered for field. Fields with
// no normalizer are rejected.
func NormalizeEmbedField(field string, raw interface{}) (interface{}, bool) {
	normalize, ok := embedFieldNormalizers[field]
	if !ok {
		return nil, false
	}
	return normalize(raw)
}

// normalizeBool passes literal booleans through and turns anything else into false.
func normalizeBool(raw interface{}) (interface{}, bool) {
	if b, ok := raw.(bool); ok {
		return b, true
	}
	return false, true
}

// normalizePositiveInt accepts numbers and numeric strings greater than zero.
func normalizePositiveInt(raw interface{}) (interface{}, bool) {
	n, ok := toNumber(raw)
	if !ok || n <= 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return nil, false
	}
	return int64(n), true
}

func toNumber(raw interface{}) (float64, bool) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// normalizeChatMode never drops the field: unknown modes fall back to the default.
func normalizeChatMode(raw interface{}) (interface{}, bool) {
	mode, _ := raw.(string)
	for _, valid := range model.ValidChatModes {
		if mode == valid {
			return mode, true
		}
	}
	return model.DefaultChatMode, true
}

// normalizeAllowlist turns a comma separated list, a list of strings or a JSON
// array into a JSON array of absolute URLs. Entries without a scheme get
// https://, entries that still do not parse or whose host is neither an
// RFC 1123 hostname nor an IP are dropped. Empty input means no
// restriction and is dropped.
func normalizeAllowlist(raw interface{}) (interface{}, bool) {
	var entries []string
	switch v := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, false
		}
		// Already normalized values are stored as a JSON array.
		if strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
				return nil, false
			}
			if len(entries) == 0 {
				return "[]", true
			}
			break
		}
		entries = strings.Split(v, ",")
	case []string:
		entries = v
	case []interface{}:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			entries = append(entries, s)
		}
	default:
		return nil, false
	}
	if len(entries) == 0 {
		return nil, false
	}

	hosts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if origin, ok := normalizeOrigin(entry); ok {
			hosts = append(hosts, origin)
		}
	}

	data, err := json.Marshal(hosts)
	if err != nil {
		return nil, false
	}
	return string(data), true
}

func normalizeOrigin(input string) (string, bool) {
	candidate := strings.TrimSpace(input)
	if candidate == "" {
		return "", false
	}
	lower := strings.ToLower(candidate)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	if validate.Var(u.Hostname(), "hostname_rfc1123|ip") != nil {
		return "", false
	}
	return candidate, true
}

// normalizeDefaultMessages accepts JSON text (or an already decoded list)
// holding an array of strings and re-encodes it.
func normalizeDefaultMessages(raw interface{}) (interface{}, bool) {
	var decoded interface{}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, false
		}
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return nil, false
		}
	case []string:
		decoded = toInterfaces(v)
	default:
		decoded = v
	}

	items, ok := decoded.([]interface{})
	if !ok {
		return nil, false
	}
	messages := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		messages = append(messages, s)
	}

	data, err := json.Marshal(messages)
	if err != nil {
		return nil, false
	}
	return string(data), true
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// normalizeString accepts any string, cut to MaxEmbedStringLength characters.
func normalizeString(raw interface{}) (interface{}, bool) {
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	return TruncateString(s, MaxEmbedStringLength), true
}

// TruncateString cuts s to at most max characters without splitting a rune.
func TruncateString(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
