package config

import (
	"fmt"
	"time"
)

type KeepaliveConfig struct {
	Enabled         bool
	IntervalSeconds int
	Path            string
}

func (c *KeepaliveConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("keepalive interval seconds (%d) needs to be greater than 0", c.IntervalSeconds)
	}
	if c.Path == "" {
		return fmt.Errorf("the keepalive path cannot be empty")
	}
	return nil
}

func (c KeepaliveConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}
