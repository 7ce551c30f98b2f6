package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSV_SkipsHeader(t *testing.T) {
	s, err := LoadCSV(strings.NewReader("date,price\n2014-09-17,457.33\n2014-09-18,424.44\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "457.33", s.Points()[0].Price.String())
}

func TestLoadCSV_InvalidRow(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("date,price\n2014-09-17,abc\n"))
	assert.Error(t, err)

	_, err = LoadCSV(strings.NewReader("2014-13-45,100\n"))
	assert.Error(t, err)
}

func TestLoadJSON(t *testing.T) {
	s, err := LoadJSON(strings.NewReader(`{"2014-09-18": 424.44, "2014-09-17": "457.33"}`))
	require.NoError(t, err)
	assert.Equal(t, day("2014-09-17"), s.MinDate())
	assert.Equal(t, "424.44", s.Latest().Price.String())
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "unsupported dataset format")
}

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	btc := "date,price\n2024-01-02,45000\n2024-01-03,42800\n2024-01-20,44000\n"
	fx := `{"2024-01-02": 5.0, "2024-01-10": 5.5}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "btc_usd.csv"), []byte(btc), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fx_brl.json"), []byte(fx), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0644))
	return dir
}

func TestDataManager_LoadAllData(t *testing.T) {
	dm := NewDataManager(writeDataset(t))
	require.NoError(t, dm.LoadAllData())

	assert.Equal(t, []string{"BRL", "USD"}, dm.Currencies())

	minDate, maxDate, err := dm.GetAvailableRange()
	require.NoError(t, err)
	assert.Equal(t, day("2024-01-02"), minDate)
	assert.Equal(t, day("2024-01-20"), maxDate)

	brl, err := dm.Series("brl")
	require.NoError(t, err)
	p, err := brl.PriceAt(day("2024-01-20"))
	require.NoError(t, err)
	assert.Equal(t, "242000.00", p.Price.StringFixed(2))

	usd, err := dm.Series("")
	require.NoError(t, err)
	assert.Equal(t, 3, usd.Len())

	_, err = dm.Series("JPY")
	assert.True(t, domain.IsValidation(err))
}

func TestDataManager_MissingPriceFile(t *testing.T) {
	dm := NewDataManager(t.TempDir())
	err := dm.LoadAllData()
	assert.ErrorContains(t, err, "btc_usd")
}

func TestDataManager_NotLoaded(t *testing.T) {
	dm := NewDataManager("unused")
	_, err := dm.Series("USD")
	assert.Error(t, err)
	_, err = dm.ValidateDataQuality()
	assert.Error(t, err)
}

func TestDataManager_ValidateDataQuality(t *testing.T) {
	dm := NewDataManager(writeDataset(t))
	require.NoError(t, dm.LoadAllData())

	issues, err := dm.validateDataQuality(day("2024-01-21"))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "gap of 17 days")

	issues, err = dm.validateDataQuality(day("2024-02-20"))
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[1], "31 days old")
}

func TestNewDataManagerFromSeries(t *testing.T) {
	btc := weekdaySeries(t)
	dm, err := NewDataManagerFromSeries(btc, nil)
	require.NoError(t, err)

	s, err := dm.Series("usd")
	require.NoError(t, err)
	assert.Same(t, btc, s)
}
