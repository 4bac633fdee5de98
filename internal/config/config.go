package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Application ApplicationConfig
	Layers      LayersConfig
	SSH         SSHConfig
	CSM         CSMConfig
	Logger      LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// ApplicationConfig locates the application layer inputs and outputs: the
// digested configuration to load, the build directory for staged files,
// the node setup binary pushed to targets and the directory it lands in.
type ApplicationConfig struct {
	ConfigPath  string
	BuildDir    string
	SetupBinary string
	RemoteDir   string
}

// LayersConfig points at the lower vTDS layer APIs.
type LayersConfig struct {
	ClusterURL  string
	ProviderURL string
	Timeout     time.Duration
}

type SSHConfig struct {
	User                     string
	KeyPath                  string
	KnownHostsPath           string
	InsecureSkipHostKeyCheck bool
	Timeout                  time.Duration
}

type CSMConfig struct {
	Enabled        bool
	KubeConfigPath string
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "vtds")
	v.SetDefault("DB_PASSWORD", "vtds")
	v.SetDefault("DB_NAME", "vtds_application")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("APP_CONFIG_PATH", "/etc/vtds/application.yaml")
	v.SetDefault("APP_BUILD_DIR", "/var/lib/vtds/build")
	v.SetDefault("APP_SETUP_BINARY", "/usr/local/bin/vtds-nodesetup")
	v.SetDefault("APP_REMOTE_DIR", "/root")
	v.SetDefault("CLUSTER_URL", "http://localhost:8081")
	v.SetDefault("PROVIDER_URL", "http://localhost:8082")
	v.SetDefault("LAYER_TIMEOUT", "30s")
	v.SetDefault("SSH_USER", "root")
	v.SetDefault("SSH_KEY_PATH", "")
	v.SetDefault("SSH_KNOWN_HOSTS_PATH", "")
	v.SetDefault("SSH_INSECURE_SKIP_HOST_KEY_CHECK", false)
	v.SetDefault("SSH_TIMEOUT", "30s")
	v.SetDefault("CSM_ENABLED", false)
	v.SetDefault("CSM_KUBECONFIG_PATH", "")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: durationOr(v, "DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Application: ApplicationConfig{
			ConfigPath:  v.GetString("APP_CONFIG_PATH"),
			BuildDir:    v.GetString("APP_BUILD_DIR"),
			SetupBinary: v.GetString("APP_SETUP_BINARY"),
			RemoteDir:   v.GetString("APP_REMOTE_DIR"),
		},
		Layers: LayersConfig{
			ClusterURL:  v.GetString("CLUSTER_URL"),
			ProviderURL: v.GetString("PROVIDER_URL"),
			Timeout:     durationOr(v, "LAYER_TIMEOUT", 30*time.Second),
		},
		SSH: SSHConfig{
			User:                     v.GetString("SSH_USER"),
			KeyPath:                  v.GetString("SSH_KEY_PATH"),
			KnownHostsPath:           v.GetString("SSH_KNOWN_HOSTS_PATH"),
			InsecureSkipHostKeyCheck: v.GetBool("SSH_INSECURE_SKIP_HOST_KEY_CHECK"),
			Timeout:                  durationOr(v, "SSH_TIMEOUT", 30*time.Second),
		},
		CSM: CSMConfig{
			Enabled:        v.GetBool("CSM_ENABLED"),
			KubeConfigPath: v.GetString("CSM_KUBECONFIG_PATH"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
