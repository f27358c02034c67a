package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDBPath(t *testing.T) {
	t.Setenv("DB_PATH", "")
	assert.Equal(t, DefaultDBPath, DBPath())

	t.Setenv("DB_PATH", "/var/lib/rainbow/table.db")
	assert.Equal(t, "/var/lib/rainbow/table.db", DBPath())
}

func TestHTTPAddr(t *testing.T) {
	t.Setenv("RAINBOW_ADDR", "")
	assert.Equal(t, DefaultHTTPAddr, HTTPAddr())

	t.Setenv("RAINBOW_ADDR", ":9090")
	assert.Equal(t, ":9090", HTTPAddr())
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{env: "", want: "info"},
		{env: "debug", want: "debug"},
		{env: "nonsense", want: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("RAINBOW_LOG", tt.env)
			assert.Equal(t, tt.want, LogLevel())
		})
	}
}
