package app

import (
	"strings"

	"github.com/charlesng35/peerfeed/internal/database"
)

// ConnectionConfig maps the configured driver section onto database.Config.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	dbCfg := database.Config{
		Driver:       strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:         strings.TrimSpace(c.Path),
		DSN:          strings.TrimSpace(c.DSN),
		LogLevel:     strings.TrimSpace(c.LogLevel),
		MaxOpenConns: c.MaxOpenConns,
		MaxIdleConns: c.MaxIdleConns,
	}

	var section DBAuthConfig
	switch dbCfg.Driver {
	case "", "sqlite", "sqlite3":
		dbCfg.Driver = "sqlite"
		return dbCfg
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		section = c.Postgres
	case "mysql":
		section = c.MySQL
	default:
		// Unsupported drivers surface as an error from database.Open.
		return dbCfg
	}

	dbCfg.Host = strings.TrimSpace(section.Host)
	dbCfg.Port = section.Port
	dbCfg.Name = strings.TrimSpace(section.Database)
	dbCfg.User = strings.TrimSpace(section.Username)
	dbCfg.Password = section.Password
	return dbCfg
}
