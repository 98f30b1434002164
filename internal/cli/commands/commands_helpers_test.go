package commands

import (
	"path/filepath"
	"testing"

	"VaultNote/internal/config"
)

// withTempConfig направляет локальную историю в temp,
// чтобы артефакты (база клиента) создавались во временном каталоге.
func withTempConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	return &config.Config{
		ServerURL:    serverURL,
		ClientDBPath: filepath.Join(t.TempDir(), "client.sqlite"),
	}
}
