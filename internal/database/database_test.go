package database

import (
	"testing"

	"blood-request-routing/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	base := config.DatabaseConfig{Host: "db", Port: "1234", User: "u", Password: "p", Database: "blood", SSLMode: "disable"}

	for _, driver := range []string{"mysql", "postgres"} {
		t.Run(driver, func(t *testing.T) {
			cfg := base
			cfg.Driver = driver
			d, err := Dialector(cfg)
			require.NoError(t, err)
			assert.Equal(t, driver, d.Name())
		})
	}

	t.Run("unknown driver", func(t *testing.T) {
		cfg := base
		cfg.Driver = "sqlite"
		_, err := Dialector(cfg)
		assert.Error(t, err)
	})
}
