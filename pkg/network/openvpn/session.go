package openvpn

import (
	"context"
	"time"
)

// Session records an OpenVPN client started by this process. It survives
// restarts so the PID and start time of a running client stay visible.
type Session struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	ProfilePath string    `json:"profilePath"`
	PidFile     string    `json:"pidFile"`
	Pid         int       `json:"pid,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
}

type SessionRepository interface {
	FindOne(ctx context.Context, name string) (*Session, error)
	FindAll(ctx context.Context) ([]*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, name string) error
}

type SessionStatus struct {
	*Session
	Status string `json:"status"`
}
