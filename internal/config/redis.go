package config

import (
	"fmt"
	"net"
)

// RedisConfig is only used by the redis credential store
type RedisConfig struct {
	Addresses  []string
	IsSentinel bool
	Password   RedactedString
	MasterName string
	DBIndex    int
}

func (c RedisConfig) Validate(e RunningEnvironment) error {
	if len(c.Addresses) == 0 {
		return fmt.Errorf("at least one redis address has to be provided")
	}
	for _, address := range c.Addresses {
		if _, _, err := net.SplitHostPort(address); err != nil {
			return fmt.Errorf("the redis address %q is not in the host:port form: %w", address, err)
		}
	}
	if !c.IsSentinel && len(c.Addresses) > 1 {
		return fmt.Errorf("only sentinel setups can list more than one redis address")
	}
	if c.IsSentinel && c.MasterName == "" {
		return fmt.Errorf("the redis master name is required when using sentinel")
	}
	if c.DBIndex < 0 {
		return fmt.Errorf("the redis db index (%d) cannot be negative", c.DBIndex)
	}
	if e == Production && c.Password == "" {
		return fmt.Errorf("a redis password is required in production")
	}
	return nil
}
