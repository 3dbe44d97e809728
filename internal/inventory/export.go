package inventory

import (
	"fmt"
	"io"
	"strconv"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/talkincode/farmstock/internal/domain"
)

// ExportFilename is the attachment name of the CSV export
const ExportFilename = "products.csv"

// ExportXLSXFilename is the attachment name of the spreadsheet export
const ExportXLSXFilename = "products.xlsx"

const exportSheet = "Products"

// ExportHeader is the fixed header row of every export
var ExportHeader = []string{"Name", "Price", "Quantity", "Category"}

// ProductRow is one exported product.
type ProductRow struct {
	Name     string `csv:"Name"`
	Price    string `csv:"Price"`
	Quantity int    `csv:"Quantity"`
	Category string `csv:"Category"`
}

func (r ProductRow) cells() []interface{} {
	return []interface{}{r.Name, r.Price, r.Quantity, r.Category}
}

// ExportRows converts products to export rows, keeping their order.
func ExportRows(products []domain.Product) []*ProductRow {
	rows := make([]*ProductRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, &ProductRow{
			Name:     p.Name,
			Price:    p.Price.StringFixed(priceDecimals),
			Quantity: p.Quantity,
			Category: p.CategoryName(),
		})
	}
	return rows
}

// WriteCSV writes the header and one row per product; no products gives the header only.
func WriteCSV(w io.Writer, products []domain.Product) error {
	return errors.Wrap(gocsv.Marshal(ExportRows(products), w), "write products csv")
}

// WriteXLSX writes the same table as WriteCSV as a single-sheet workbook.
func WriteXLSX(w io.Writer, products []domain.Product) error {
	xlsx := excelize.NewFile()
	xlsx.SetSheetName("Sheet1", exportSheet)
	for i, h := range ExportHeader {
		xlsx.SetCellValue(exportSheet, cellName(i, 1), h)
	}
	for n, row := range ExportRows(products) {
		for i, v := range row.cells() {
			xlsx.SetCellValue(exportSheet, cellName(i, n+2), v)
		}
	}
	return errors.Wrap(xlsx.Write(w), "write products xlsx")
}

// cellName returns the A1-style name of a cell; col is zero based and limited to the export width.
func cellName(col, row int) string {
	return fmt.Sprintf("%c%s", 'A'+rune(col), strconv.Itoa(row))
}
