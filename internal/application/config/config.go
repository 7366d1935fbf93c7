package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverPgx    = "pgx"
	DriverLibSQL = "libsql"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"3000"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9090"`
	Domain     string `env:"DOMAIN" envDefault:"http://localhost:3000"`
	JWTSecret  string `env:"JWT_SECRET,required"`

	// AdminIDs - пользователи, которым игра доступна без подписки
	AdminIDs []string `env:"ADMIN_IDS" envSeparator:","`
	FreePlay bool     `env:"FREE_PLAY" envDefault:"false"`

	Database DatabaseConfig
	Postgres PostgresConfig
	Game     GameConfig
}

type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"pgx"`
	LibSQLPath string `env:"LIBSQL_PATH" envDefault:"gamefinity.db"`
}

// Dialect возвращает диалект goose для выбранного драйвера
func (d *DatabaseConfig) Dialect() string {
	if d.Driver == DriverLibSQL {
		return "sqlite3"
	}

	return "postgres"
}

type PostgresConfig struct {
	URL string `env:"POSTGRES_URL"`

	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	Name     string `env:"POSTGRES_NAME" envDefault:"gamefinity"`
	SSL      string `env:"POSTGRES_SSL" envDefault:"disable"`
}

func (p *PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}

	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSL,
	)
}

type GameConfig struct {
	// Tick - как часто актор комнаты проверяет дедлайны фаз
	Tick time.Duration `env:"GAME_TICK" envDefault:"250ms"`
	// RestoreGrace - сколько восстановленная после рестарта комната ждет игроков
	RestoreGrace time.Duration `env:"GAME_RESTORE_GRACE" envDefault:"30s"`

	GuestTokenTTL time.Duration `env:"GUEST_TOKEN_TTL" envDefault:"72h"`

	// WS rate limit на одно соединение
	WSMessagesPerSecond float64 `env:"WS_RATE" envDefault:"10"`
	WSBurst             int     `env:"WS_BURST" envDefault:"20"`
}

func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if c.Database.Driver != DriverPgx && c.Database.Driver != DriverLibSQL {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	return &c, nil
}

// IsAdmin проверяет, входит ли пользователь в ADMIN_IDS
func (c *Config) IsAdmin(userID string) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}

	return false
}
