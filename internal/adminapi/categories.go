package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/farmstock/internal/inventory"
	"github.com/talkincode/farmstock/internal/webserver"
)

type categoryPayload struct {
	Name formValue `json:"name" form:"name"`
}

// registerCategoryRoutes registers category CRUD routes
func registerCategoryRoutes() {
	webserver.ApiGET("/categories", listCategories)
	webserver.ApiPOST("/categories", createCategory)
	webserver.ApiGET("/categories/:id", getCategory)
	webserver.ApiPOST("/categories/:id", updateCategory)
	webserver.ApiPUT("/categories/:id", updateCategory)
	webserver.ApiGET("/categories/:id/delete", confirmDeleteCategory)
	webserver.ApiPOST("/categories/:id/delete", deleteCategory)
}

func listCategories(c echo.Context) error {
	categories, err := GetInventory(c).ListCategories(requestContext(c))
	if err != nil {
		return failFromError(c, err, "category")
	}
	return ok(c, categories)
}

func getCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}

	detail, err := GetInventory(c).GetCategory(requestContext(c), id)
	if err != nil {
		return failFromError(c, err, "category")
	}
	return ok(c, detail)
}

func createCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category parameters", nil)
	}

	category, ev, err := GetInventory(c).CreateCategory(requestContext(c), inventory.CategoryInput{Name: payload.Name.String()})
	if err != nil {
		return failFromError(c, err, "category")
	}
	return okMsg(c, notify(c, ev), category)
}

func updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}

	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category parameters", nil)
	}

	category, ev, err := GetInventory(c).UpdateCategory(requestContext(c), id, inventory.CategoryInput{Name: payload.Name.String()})
	if err != nil {
		return failFromError(c, err, "category")
	}
	return okMsg(c, notify(c, ev), category)
}

// confirmDeleteCategory shows the category and how many products would block the delete
func confirmDeleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}

	detail, err := GetInventory(c).GetCategory(requestContext(c), id)
	if err != nil {
		return failFromError(c, err, "category")
	}
	return ok(c, map[string]interface{}{
		"category":   detail,
		"can_delete": detail.ProductCount == 0,
		"confirm":    "Are you sure you want to delete \"" + detail.Name + "\"?",
	})
}

func deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}

	category, ev, err := GetInventory(c).DeleteCategory(requestContext(c), id)
	if err != nil {
		return failFromError(c, err, "category")
	}
	return okMsg(c, notify(c, ev), map[string]interface{}{"id": category.ID, "name": category.Name})
}
