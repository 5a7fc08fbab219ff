package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	p := params()
	now := time.Date(2024, 3, 15, 22, 30, 0, 0, time.UTC)

	got := Window(p, 30, now)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), got.End)
	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), got.Start)
	assert.Equal(t, p.Tickers, got.Tickers)

	assert.Equal(t, p, Window(p, 0, now))
}

func TestScheduler_RegisterAndRunNow(t *testing.T) {
	dir := t.TempDir()
	b := &Batch{
		Source:   staticSource{table: prices()},
		DataDir:  filepath.Join(dir, "data"),
		PlotsDir: filepath.Join(dir, "plots"),
		Log:      zerolog.New(nil).Level(zerolog.Disabled),
	}
	s := NewScheduler(context.Background(), b, params(), 0)

	assert.Error(t, s.Register("not a cron spec"))
	require.NoError(t, s.Register("0 30 22 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)

	s.RunNow()
	_, err := os.Stat(filepath.Join(dir, "plots", PortfolioPlot))
	assert.NoError(t, err)

	s.Start()
	s.Stop()
}
