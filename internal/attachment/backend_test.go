package attachment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/config"
)

func TestFromConfigDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	cfg := &config.Config{Uploads: config.UploadsConfig{Dir: dir, Backend: config.BackendDisk}}

	m, err := FromConfig(context.Background(), cfg)
	require.NoError(t, err)
	ds, ok := m.(*DiskStore)
	require.True(t, ok)
	require.Equal(t, dir, ds.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestFromConfigUnknownBackend(t *testing.T) {
	_, err := FromConfig(context.Background(), &config.Config{Uploads: config.UploadsConfig{Backend: "ftp"}})
	require.Error(t, err)
}

func TestFromConfigMinIOWithoutEndpoint(t *testing.T) {
	_, err := FromConfig(context.Background(), &config.Config{Uploads: config.UploadsConfig{Backend: config.BackendMinIO}})
	require.Error(t, err)
}
