package config

import (
	"strings"

	logx "notifykit/pkg/logx"
)

// SummarizeConfigChange returns the changed top-level sections and log
// fields describing their new values.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 12)

	if oldCfg.Notify != newCfg.Notify {
		changed = append(changed, "notify")
		attrs = append(attrs,
			logx.String("notify.default_message_type", newCfg.Notify.DefaultMessageType),
			logx.String("notify.view", newCfg.Notify.View),
			logx.Bool("notify.strict_filter", newCfg.Notify.StrictFilter),
		)
	}

	if strings.TrimSpace(oldCfg.Views.Dir) != strings.TrimSpace(newCfg.Views.Dir) {
		changed = append(changed, "views")
		attrs = append(attrs, logx.String("views.dir", strings.TrimSpace(newCfg.Views.Dir)))
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if oldCfg.HTTP != newCfg.HTTP {
		changed = append(changed, "http")
		attrs = append(attrs,
			logx.Bool("http.enabled", newCfg.HTTP.Enabled),
			logx.String("http.addr", strings.TrimSpace(newCfg.HTTP.Addr)),
			logx.Int("http.rate_per_sec", newCfg.HTTP.RatePerSec),
		)
	}

	return changed, attrs
}
