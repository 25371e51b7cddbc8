package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/onet/v3/app"
	"go.dedis.ch/onet/v3/cfgpath"
)

func TestDefaultConfigFile(t *testing.T) {
	cfg := defaultConfigFile()
	require.Equal(t, app.DefaultServerConfig, filepath.Base(cfg))
	require.Equal(t, cfgpath.GetConfigPath(DefaultName), filepath.Dir(cfg))
}
