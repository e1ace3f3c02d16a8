package main

import (
	"fmt"

	"bizdir/pkg/types"

	"github.com/kelseyhightower/envconfig"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.CookieHashKey == "" {
		return nil, fmt.Errorf("set COOKIE_HASH_KEY")
	}

	if c.CookieBlockKey == "" {
		return nil, fmt.Errorf("set COOKIE_BLOCK_KEY")
	}

	return c, nil
}
