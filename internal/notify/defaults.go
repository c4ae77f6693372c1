package notify

import "strings"

// Configuration keys read by DefaultsFrom.
const (
	KeyDefaultMessageType = "notify.default_message_type"
	KeyView               = "notify.view"
)

// Source is a read-only configuration lookup.
type Source interface {
	Lookup(key string) string
}

// Defaults are the configuration-supplied values a Store starts from and
// RestoreDefaultType returns to.
type Defaults struct {
	MessageType string
	View        string
}

// DefaultsFrom reads the default message type and view from src.
// Missing keys come back as empty strings and are used as is.
func DefaultsFrom(src Source) Defaults {
	if src == nil {
		return Defaults{}
	}
	return Defaults{
		MessageType: strings.TrimSpace(src.Lookup(KeyDefaultMessageType)),
		View:        strings.TrimSpace(src.Lookup(KeyView)),
	}
}
