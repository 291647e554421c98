package config

import "fmt"

type RunningEnvironment string

const (
	Development RunningEnvironment = "development"
	Production  RunningEnvironment = "production"
)

type Config struct {
	RunningEnvironment RunningEnvironment
	DebugMode          bool
	Backend            BackendConfig
	Credentials        CredentialsConfig
	Redis              RedisConfig
	Server             ServerConfig
	Keepalive          KeepaliveConfig
	Monitoring         MonitoringConfig
}

func (c *Config) Validate() error {
	if c.RunningEnvironment != Development && c.RunningEnvironment != Production {
		return fmt.Errorf("unknown running environment %q (must be one of development or production)", c.RunningEnvironment)
	}
	err := c.Backend.Validate()
	if err != nil {
		return err
	}
	err = c.Credentials.Validate(c.RunningEnvironment)
	if err != nil {
		return err
	}
	if c.Credentials.Type == CredentialStoreRedis {
		err = c.Redis.Validate(c.RunningEnvironment)
		if err != nil {
			return err
		}
	}
	err = c.Keepalive.Validate()
	if err != nil {
		return err
	}
	return nil
}
