package core

import "time"

const (
	AppName       = "slimctx"
	AppUserAgent  = "slimctx/0.1"
	AppVersion    = "0.1.0"
	RepositoryURL = "https://github.com/sandevgo/slimctx"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn. Timestamp is optional; the prioritizer
// synthesizes one when it is zero.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// RoleWeight reflects how important a role is structurally: system
// instructions must survive prioritization, assistant output is the most
// compressible.
func RoleWeight(role string) float64 {
	switch role {
	case RoleSystem:
		return 1.0
	case RoleUser:
		return 0.8
	case RoleAssistant:
		return 0.6
	default:
		return 0.5
	}
}
