package config

import (
	"fmt"
	"time"
)

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	AllowedOrigins []string
	UploadDir      string
	// StoreTimeout bounds every history-store call; past it the call is
	// treated as failed and live delivery proceeds.
	StoreTimeout time.Duration
	// HistoryLimit caps replay on join; zero means unbounded.
	HistoryLimit int
}

func NewConfig(serverAddr, databaseDSN, uploadDir string, allowedOrigins []string, storeTimeout time.Duration, historyLimit int) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if uploadDir == "" {
		return nil, fmt.Errorf("upload directory cannot be empty")
	}
	if storeTimeout < 0 {
		return nil, fmt.Errorf("store timeout cannot be negative")
	}
	if historyLimit < 0 {
		return nil, fmt.Errorf("history limit cannot be negative")
	}

	return &Config{
		ServerAddr:     serverAddr,
		DatabaseDSN:    databaseDSN,
		AllowedOrigins: allowedOrigins,
		UploadDir:      uploadDir,
		StoreTimeout:   storeTimeout,
		HistoryLimit:   historyLimit,
	}, nil
}
