package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		addr      = "localhost:8080"
		dsn       = "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"
		uploadDir = "uploads"
		orig      = []string{"http://localhost:3000"}
	)

	tcases := []struct {
		name         string
		addr         string
		dsn          string
		uploadDir    string
		orig         []string
		storeTimeout time.Duration
		historyLimit int
		err          bool
	}{
		{
			name:         "valid config",
			addr:         addr,
			dsn:          dsn,
			uploadDir:    uploadDir,
			orig:         orig,
			storeTimeout: 5 * time.Second,
			historyLimit: 0,
			err:          false,
		},
		{
			name:      "empty address",
			addr:      "",
			dsn:       dsn,
			uploadDir: uploadDir,
			orig:      orig,
			err:       true,
		},
		{
			name:      "empty DSN",
			addr:      addr,
			dsn:       "",
			uploadDir: uploadDir,
			orig:      orig,
			err:       true,
		},
		{
			name:      "empty upload dir",
			addr:      addr,
			dsn:       dsn,
			uploadDir: "",
			orig:      orig,
			err:       true,
		},
		{
			name:         "negative store timeout",
			addr:         addr,
			dsn:          dsn,
			uploadDir:    uploadDir,
			orig:         orig,
			storeTimeout: -time.Second,
			err:          true,
		},
		{
			name:         "negative history limit",
			addr:         addr,
			dsn:          dsn,
			uploadDir:    uploadDir,
			orig:         orig,
			historyLimit: -1,
			err:          true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := NewConfig(tc.addr, tc.dsn, tc.uploadDir, tc.orig, tc.storeTimeout, tc.historyLimit)
			if tc.err {
				assert.Error(t, err, "expected error for config: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for config: %s", tc.name)

			assert.Equal(t, tc.addr, config.ServerAddr, "expected server address to match")
			assert.Equal(t, tc.dsn, config.DatabaseDSN, "expected database DSN to match")
			assert.Equal(t, tc.uploadDir, config.UploadDir, "expected upload dir to match")
			assert.Equal(t, tc.orig, config.AllowedOrigins, "expected allowed origins to match")
			assert.Equal(t, tc.storeTimeout, config.StoreTimeout, "expected store timeout to match")
			assert.Equal(t, tc.historyLimit, config.HistoryLimit, "expected history limit to match")
		})
	}
}
