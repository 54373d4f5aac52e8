package config

import (
	"time"
)

type BoltDB struct {
	Path    string        `default:"/var/lib/netdash/netdash.db"`
	Timeout time.Duration `default:"5s"`
}
