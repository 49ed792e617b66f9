package simlob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAssetsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assets.yaml")
	content := `
assets:
  - name: BTC-USD
    tick_size: "0.01"
    lot_size: "0.0001"
    delay: { send: 100, receive: 150 }
  - name: ETH-USD
    delay: { send: 50, receive: 50 }
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	assets, err := LoadAssetsYAML(path)
	require.NoError(t, err)
	require.Len(t, assets, 2)

	assert.Equal(t, "BTC-USD", assets[0].Name)
	assert.True(t, assets[0].TickSize.Equal(dec("0.01")))
	assert.True(t, assets[0].LotSize.Equal(dec("0.0001")))
	assert.Equal(t, int64(100), assets[0].Delay.Send)

	assert.Equal(t, "ETH-USD", assets[1].Name)
	assert.True(t, assets[1].TickSize.Equal(dec(DefaultTickSize)))
	assert.True(t, assets[1].LotSize.Equal(dec(DefaultLotSize)))
}

func TestLoadAssetsYAML_MissingFile(t *testing.T) {
	_, err := LoadAssetsYAML("/nonexistent/path.yaml")
	assert.Error(t, err)
}
