package recordSource

import (
	"context"
	"testing"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/config"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records/memory"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Demo(t *testing.T) {
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	src, err := Open(&config.SourceConfig{Type: config.SourceType_Demo}, testLogger)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	recs, err := src.LoadRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, memory.DemoRecords(), recs)
}

func TestOpen_File(t *testing.T) {
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	path := testutil.WriteRecordsFile(t, "records.csv", "id,balance\n5,50\n")

	src, err := Open(&config.SourceConfig{Type: config.SourceType_File, RecordsFile: path}, testLogger)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	recs, err := src.LoadRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []reserves.Record{{ID: 5, Balance: 50}}, recs)
}

func TestOpenStore_BadgerRoundTrip(t *testing.T) {
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	cfg := &config.SourceConfig{Type: config.SourceType_Badger, BadgerPath: t.TempDir()}
	ctx := context.Background()

	store, err := OpenStore(cfg, testLogger)
	require.NoError(t, err)
	require.NoError(t, store.SaveRecords(ctx, memory.DemoRecords()))
	require.NoError(t, store.Close())

	src, err := Open(cfg, testLogger)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	recs, err := src.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, memory.DemoRecords(), recs)
}

func TestOpen_Errors(t *testing.T) {
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	_, err := Open(nil, testLogger)
	assert.Error(t, err)

	_, err = Open(&config.SourceConfig{Type: "s3"}, testLogger)
	assert.Error(t, err)

	_, err = OpenStore(&config.SourceConfig{Type: config.SourceType_Demo}, testLogger)
	assert.Error(t, err)

	_, err = OpenStore(&config.SourceConfig{Type: config.SourceType_Redis}, testLogger)
	assert.Error(t, err)
}
