package adminapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/farmstock/internal/inventory"
	"github.com/talkincode/farmstock/internal/metrics"
	"go.uber.org/zap"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func attachment(c echo.Context, filename string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}

// exportProductsCSV streams every product; an empty store yields the header row only
func exportProductsCSV(c echo.Context) error {
	products, err := GetInventory(c).ExportProducts(requestContext(c))
	if err != nil {
		return failFromError(c, err, "product")
	}

	attachment(c, inventory.ExportFilename)
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if err := inventory.WriteCSV(c.Response(), products); err != nil {
		return err
	}
	metrics.Exports.WithLabelValues("csv").Inc()
	return nil
}

func exportProductsXLSX(c echo.Context) error {
	products, err := GetInventory(c).ExportProducts(requestContext(c))
	if err != nil {
		return failFromError(c, err, "product")
	}

	var buf bytes.Buffer
	if err := inventory.WriteXLSX(&buf, products); err != nil {
		zap.L().Error("build workbook failed", zap.String("namespace", "adminapi"), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to build workbook", nil)
	}
	metrics.Exports.WithLabelValues("xlsx").Inc()
	attachment(c, inventory.ExportXLSXFilename)
	return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}
