package reference_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"deedcheck/internal/config"
	"deedcheck/internal/port"
	"deedcheck/internal/reference"
	"deedcheck/mocks"
)

func TestObjectSource_YAML(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Download", mock.Anything, "refs", "counties.yaml").
		Return([]byte("counties:\n  - name: Orange\n    tax_rate: 0.011\n"), nil)

	entries, err := reference.NewObjectSource(storage, "refs", "counties.yaml", "").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Orange"}, names(entries))
	storage.AssertExpectations(t)
}

func TestObjectSource_Workbook(t *testing.T) {
	f := newWorkbook(t, [][]string{{"name", "tax_rate"}, {"Ventura", "0.011"}})
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	storage := new(mocks.MockObjectStorage)
	storage.On("Download", mock.Anything, "refs", "2024/Counties.XLSX").Return(buf.Bytes(), nil)

	entries, err := reference.NewObjectSource(storage, "refs", "2024/Counties.XLSX", "").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Ventura"}, names(entries))
}

func TestObjectSource_DownloadError(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Download", mock.Anything, "refs", "counties.yaml").Return(nil, errors.New("access denied"))

	_, err := reference.NewObjectSource(storage, "refs", "counties.yaml", "").Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewSource(t *testing.T) {
	pg := new(mocks.MockReferenceSource)
	storage := new(mocks.MockObjectStorage)

	src, err := reference.NewSource(&config.ReferenceConfig{Source: config.ReferenceSourceFile, Path: "x.yaml"}, reference.Deps{})
	require.NoError(t, err)
	assert.IsType(t, &reference.FileSource{}, src)

	src, err = reference.NewSource(&config.ReferenceConfig{Source: config.ReferenceSourceXLSX, Path: "x.xlsx"}, reference.Deps{})
	require.NoError(t, err)
	assert.IsType(t, &reference.XLSXSource{}, src)

	src, err = reference.NewSource(&config.ReferenceConfig{Source: config.ReferenceSourcePostgres}, reference.Deps{Counties: pg})
	require.NoError(t, err)
	assert.Same(t, pg, src)

	src, err = reference.NewSource(&config.ReferenceConfig{Source: config.ReferenceSourceS3, Bucket: "b", Key: "k"}, reference.Deps{Storage: storage})
	require.NoError(t, err)
	assert.IsType(t, &reference.ObjectSource{}, src)
}

func TestNewSource_MissingBackends(t *testing.T) {
	_, err := reference.NewSource(&config.ReferenceConfig{Source: config.ReferenceSourcePostgres}, reference.Deps{})
	assert.Error(t, err)
	_, err = reference.NewSource(&config.ReferenceConfig{Source: config.ReferenceSourceS3}, reference.Deps{})
	assert.Error(t, err)
	_, err = reference.NewSource(&config.ReferenceConfig{Source: "ftp"}, reference.Deps{})
	assert.Error(t, err)
}

func TestLoad_FromSource(t *testing.T) {
	src := new(mocks.MockReferenceSource)
	src.On("Load", mock.Anything).Return([]port.CountyEntry{
		{Name: "Orange", TaxRate: decimal.NewNullDecimal(decimal.RequireFromString("0.011"))},
		{Name: "Kern"},
	}, nil)

	ref, err := reference.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []string{"Orange", "Kern"}, ref.Counties())
}

func TestLoad_SourceError(t *testing.T) {
	src := new(mocks.MockReferenceSource)
	src.On("Load", mock.Anything).Return(nil, errors.New("db down"))

	_, err := reference.Load(context.Background(), src)
	assert.EqualError(t, err, "db down")
}
