package main

import (
	"bytes"
	"testing"

	"github.com/aussiebroadwan/leadboard/internal/crm/app"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	require.Equal(t, app.BuildVersion+"\n", out.String())
}

func TestMigrateCommand(t *testing.T) {
	t.Setenv("CRM_CONFIG_FILE", "")
	t.Setenv("CRM_DATABASE_DRIVER", "sqlite")
	t.Setenv("CRM_DATABASE_URL", t.TempDir()+"/crm.db")
	t.Setenv("LOG_LEVEL", "error")

	rootCmd.SetArgs([]string{"migrate"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
}
