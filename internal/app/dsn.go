package app

import (
	"net/url"
	"strings"
)

const maxTracedQueryLength = 512

// postgresDSN prepares DB_URL for lib/pq. It accepts both URL and key=value
// forms, names the connection after the service unless the DSN already does,
// and optionally turns off binary results for prepared statements.
func postgresDSN(raw, serviceName string, disablePreparedBinary bool) string {
	raw = strings.TrimSpace(raw)
	params := map[string]string{}
	if serviceName = strings.TrimSpace(serviceName); serviceName != "" {
		params["fallback_application_name"] = serviceName
	}
	if disablePreparedBinary {
		params["disable_prepared_binary_result"] = "yes"
	}
	if len(params) == 0 {
		return raw
	}

	if parsed, ok := parseDSNURL(raw); ok {
		query := parsed.Query()
		for key, value := range params {
			if query.Get(key) == "" {
				query.Set(key, value)
			}
		}
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	existing := keyValueDSN(raw)
	var b strings.Builder
	b.WriteString(raw)
	for _, key := range []string{"fallback_application_name", "disable_prepared_binary_result"} {
		value, ok := params[key]
		if !ok {
			continue
		}
		if _, set := existing[key]; set {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key + "=" + quoteDSNValue(value))
	}
	return b.String()
}

// dsnDBName returns the database name of either DSN form, or "".
func dsnDBName(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, ok := parseDSNURL(raw); ok {
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}
	return keyValueDSN(raw)["dbname"]
}

// traceQuery collapses whitespace and caps the statement recorded on db spans.
func traceQuery(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}

func parseDSNURL(raw string) (*url.URL, bool) {
	if !strings.HasPrefix(raw, "postgres://") && !strings.HasPrefix(raw, "postgresql://") {
		return nil, false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	return parsed, true
}

func keyValueDSN(raw string) map[string]string {
	out := map[string]string{}
	for _, token := range strings.Fields(raw) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		out[key] = strings.Trim(value, `"'`)
	}
	return out
}

func quoteDSNValue(value string) string {
	if !strings.ContainsAny(value, ` '\`) {
		return value
	}
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return "'" + value + "'"
}
