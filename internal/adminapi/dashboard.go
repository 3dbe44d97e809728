package adminapi

import (
	"github.com/labstack/echo/v4"
	"github.com/talkincode/farmstock/internal/webserver"
)

func registerDashboardRoutes() {
	webserver.ApiGET("/dashboard", getDashboard)
}

func getDashboard(c echo.Context) error {
	d, err := GetInventory(c).Dashboard(requestContext(c))
	if err != nil {
		return failFromError(c, err, "dashboard")
	}
	return ok(c, d)
}
