package database

import (
	"testing"

	"storefront/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		want    string
		wantErr bool
	}{
		{name: "mysql", cfg: config.Config{DBDriver: "mysql", DBHost: "db", DBName: "shop"}, want: "mysql"},
		{name: "postgres", cfg: config.Config{DBDriver: "postgres", DBHost: "db", DBName: "shop"}, want: "postgres"},
		{name: "explicit dsn", cfg: config.Config{DBDriver: "postgres", DBDSN: "postgres://u:p@db/shop"}, want: "postgres"},
		{name: "unknown", cfg: config.Config{DBDriver: "oracle"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Dialector(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}
