package app

import (
	"github.com/coreos/go-systemd/v22/daemon"

	logx "notifykit/pkg/logx"
)

// notifySystemd reports state to the service manager. It is a no-op unless
// NOTIFY_SOCKET is set, as it is for Type=notify units.
func (a *App) notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	switch {
	case err != nil:
		a.log.Warn("sd_notify failed", logx.String("state", state), logx.Err(err))
	case sent:
		a.log.Debug("sd_notify sent", logx.String("state", state))
	}
}
