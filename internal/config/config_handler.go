package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const envPrefix string = "COURSEHUB"

type ConfigHandler struct {
	mainViper   *viper.Viper
	secretViper *viper.Viper
	lock        *sync.Mutex
}

type ConfigHandlerOption func(*ConfigHandler)

// WithConfigPaths adds directories that are searched before the default locations
func WithConfigPaths(paths ...string) ConfigHandlerOption {
	return func(c *ConfigHandler) {
		for i := len(paths) - 1; i >= 0; i-- {
			if paths[i] == "" {
				continue
			}
			c.mainViper.AddConfigPath(paths[i])
			c.secretViper.AddConfigPath(paths[i])
		}
	}
}

func (c *ConfigHandler) HandleChanges(callback func(Config, error)) {
	c.mainViper.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("main config file changed", "path", e.Name)
		callback(c.Config())
	})
	c.secretViper.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("secret config file changed", "path", e.Name)
		callback(c.Config())
	})
}

// Creates a configuration handler that reads the configuration files, merges them and can watch
// them for changes. Please note that the merges replace whole arrays - they do not merge arrays.
// The secret file will always overwrite anything in the non-secret / regular file. And any environment
// variables will always rewrite stuff in the secret config, so the order of preference from most
// preferred to least is environment variables, secret config, non-secret config, defaults.
func NewConfigHandler(options ...ConfigHandlerOption) *ConfigHandler {
	main := viper.New()
	main.SetConfigType("yaml")
	main.SetConfigName("config")
	secret := viper.New()
	secret.SetConfigType("yaml")
	secret.SetConfigName("secret_config")
	ch := &ConfigHandler{secretViper: secret, mainViper: main, lock: &sync.Mutex{}}
	// Viper will look through the list of paths and use the first one where there is a file
	// so the paths from the options and the env variable will always take precedence over the rest
	for _, opt := range options {
		opt(ch)
	}
	configPaths := []string{}
	configPathEnv := os.Getenv("CONFIG_LOCATION")
	if configPathEnv != "" {
		configPaths = append(configPaths, configPathEnv)
	}
	configPaths = append(configPaths, "/etc/coursehub", ".")
	for _, path := range configPaths {
		main.AddConfigPath(path)
		secret.AddConfigPath(path)
	}
	setDefaults(main)
	return ch
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("runningEnvironment", string(Production))
	v.SetDefault("debugMode", false)
	v.SetDefault("backend.baseURL", "http://localhost:5000/api/v1")
	v.SetDefault("backend.timeoutSeconds", 30)
	v.SetDefault("backend.refreshTimeoutSeconds", 30)
	v.SetDefault("backend.endpoints.login", "/auth/login")
	v.SetDefault("backend.endpoints.refresh", "/auth/refresh")
	v.SetDefault("backend.endpoints.logout", "/auth/logout")
	v.SetDefault("backend.exemptPaths", []string{})
	v.SetDefault("backend.loginPageURL", "/auth/login")
	v.SetDefault("credentials.type", string(CredentialStoreMemory))
	v.SetDefault("credentials.filePath", "")
	v.SetDefault("credentials.key", "coursehub")
	v.SetDefault("credentials.encryption.enabled", false)
	v.SetDefault("credentials.encryption.secretKey", "")
	v.SetDefault("redis.addresses", []string{"localhost:6379"})
	v.SetDefault("redis.isSentinel", false)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.masterName", "")
	v.SetDefault("redis.dbIndex", 0)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rateLimits.enabled", false)
	v.SetDefault("server.rateLimits.rate", 50)
	v.SetDefault("server.rateLimits.burst", 100)
	v.SetDefault("server.allowOrigin", []string{})
	v.SetDefault("keepalive.enabled", false)
	v.SetDefault("keepalive.intervalSeconds", 300)
	v.SetDefault("keepalive.path", "/auth/me")
	v.SetDefault("monitoring.sentry.enabled", false)
	v.SetDefault("monitoring.sentry.dsn", "")
	v.SetDefault("monitoring.sentry.environment", "")
	v.SetDefault("monitoring.sentry.sampleRate", 0.0)
	v.SetDefault("monitoring.prometheus.enabled", false)
	v.SetDefault("monitoring.prometheus.port", 8765)
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}

func (c *ConfigHandler) merge() error {
	// AllSettings includes the values from the bound environment variables
	err := c.mainViper.MergeConfigMap(c.secretViper.AllSettings())
	if err != nil {
		return err
	}
	return nil
}

func (c *ConfigHandler) getConfig() (Config, error) {
	var output Config
	err := c.mainViper.ReadInConfig()
	if err != nil {
		if !isNotFound(err) {
			return Config{}, err
		}
		slog.Info("could not find any main config files - only defaults and environment variables will be used")
	}
	err = c.secretViper.ReadInConfig()
	if err != nil {
		if !isNotFound(err) {
			return Config{}, err
		}
		slog.Info("could not find any secret config files - only the public file and environment variables will be used")
	}
	// the env variables will overwrite stuff in the secret config if set
	for _, key := range c.mainViper.AllKeys() {
		envKey := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		err := c.secretViper.BindEnv(key, envKey)
		if err != nil {
			return Config{}, fmt.Errorf("config: unable to bind env %s: %w", envKey, err)
		}
	}
	// here the secret config (with any env variables merged) will overwrite anything from the non-secret configuration
	err = c.merge()
	if err != nil {
		return Config{}, err
	}
	err = c.mainViper.Unmarshal(
		&output,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				parseStringAsURL(),
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		),
	)
	if err != nil {
		return Config{}, err
	}
	err = output.Validate()
	if err != nil {
		return Config{}, err
	}
	return output, nil
}

func (c *ConfigHandler) Config() (Config, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.getConfig()
}

func (c *ConfigHandler) Watch() {
	c.mainViper.WatchConfig()
	c.secretViper.WatchConfig()
}

func parseStringAsURL() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (interface{}, error) {
		// Check that the data is string
		if f.Kind() != reflect.String {
			return data, nil
		}

		// Check that the target type is our custom type
		if t != reflect.TypeOf(url.URL{}) {
			return data, nil
		}

		// Return the parsed value
		dataStr, ok := data.(string)
		if !ok {
			return nil, fmt.Errorf("cannot cast URL value to string")
		}
		if dataStr == "" {
			return nil, fmt.Errorf("empty values are not allowed for URLs")
		}
		url, err := url.Parse(dataStr)
		if err != nil {
			return nil, err
		}
		return url, nil
	}
}
