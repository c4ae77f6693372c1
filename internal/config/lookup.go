package config

import "strconv"

// Lookup answers dotted configuration keys such as "notify.view".
// Unknown keys return "".
func (c *Config) Lookup(key string) string {
	if c == nil {
		return ""
	}
	switch key {
	case "notify.default_message_type":
		return c.Notify.DefaultMessageType
	case "notify.view":
		return c.Notify.View
	case "notify.strict_filter":
		return strconv.FormatBool(c.Notify.StrictFilter)
	case "views.dir":
		return c.Views.Dir
	case "logging.level":
		return c.Logging.Level
	case "http.enabled":
		return strconv.FormatBool(c.HTTP.Enabled)
	case "http.addr":
		return c.HTTP.Addr
	default:
		return ""
	}
}

// Lookup answers keys against the committed config.
func (m *Manager) Lookup(key string) string {
	return m.Get().Lookup(key)
}
