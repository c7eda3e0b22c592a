package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadColumns_CSV(t *testing.T) {
	path := writeCSV(t, "age,color\n10,red\n20,blue\n,green\n")

	r := NewDataReader(path)
	columns, err := r.ReadColumns()
	require.NoError(t, err)
	require.Len(t, columns, 2)

	assert.Equal(t, "age", columns[0].Name)
	assert.Equal(t, "10", columns[0].Values[0])
	assert.Nil(t, columns[0].Values[2], "empty cell must be missing")
	assert.Equal(t, "green", columns[1].Values[2])
}

func TestReadColumns_WeightColumn(t *testing.T) {
	path := writeCSV(t, "v,w\nx,2.0\ny,0.5\n")

	r := NewDataReader(path)
	r.WeightColumn = "w"
	columns, err := r.ReadColumns()
	require.NoError(t, err)
	require.Len(t, columns, 1)

	assert.Equal(t, "v", columns[0].Name)
	assert.Equal(t, []float64{2.0, 0.5}, columns[0].Weights)
}

func TestReadColumns_WeightColumnMissing(t *testing.T) {
	path := writeCSV(t, "v\nx\n")

	r := NewDataReader(path)
	r.WeightColumn = "w"
	_, err := r.ReadColumns()
	assert.Error(t, err)
}

func TestReadColumns_HeaderOnly(t *testing.T) {
	path := writeCSV(t, "a,b\n")

	_, err := NewDataReader(path).ReadColumns()
	assert.Error(t, err)
}

func TestReadColumns_ShortRowsPadAsMissing(t *testing.T) {
	path := writeCSV(t, "a,b\n1,2\n3\n")

	columns, err := NewDataReader(path).ReadColumns()
	require.NoError(t, err)
	assert.Equal(t, "3", columns[0].Values[1])
	assert.Nil(t, columns[1].Values[1])
}

func TestReadColumns_FileNotFound(t *testing.T) {
	_, err := NewDataReader("/nonexistent/data.csv").ReadColumns()
	assert.Error(t, err)
}
