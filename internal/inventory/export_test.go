package inventory

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/farmstock/internal/domain"
)

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Name,Price,Quantity,Category\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, []domain.Product{}))
	assert.Equal(t, "Name,Price,Quantity,Category\n", buf.String())
}

func TestWriteCSVRows(t *testing.T) {
	svc, db, _ := newTestService(t)
	dairy := seedCategory(t, db, "Dairy")
	seedProduct(t, db, "Milk", "2.50", 3, dairy)
	seedProduct(t, db, "Eggs, free range", "4", 10, dairy)

	products, err := svc.ExportProducts(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, products))
	assert.Equal(t,
		"Name,Price,Quantity,Category\n"+
			"\"Eggs, free range\",4.00,10,Dairy\n"+
			"Milk,2.50,3,Dairy\n",
		buf.String())
}

func TestWriteXLSX(t *testing.T) {
	products := []domain.Product{{Name: "Milk", Quantity: 3, Category: &domain.Category{Name: "Dairy"}}}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, products))
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
}

func TestCellName(t *testing.T) {
	assert.Equal(t, "A1", cellName(0, 1))
	assert.Equal(t, "D12", cellName(3, 12))
}
