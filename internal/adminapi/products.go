package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/farmstock/internal/inventory"
	"github.com/talkincode/farmstock/internal/webserver"
)

type productPayload struct {
	Name        formValue `json:"name" form:"name"`
	Price       formValue `json:"price" form:"price"`
	Quantity    formValue `json:"quantity" form:"quantity"`
	Category    formValue `json:"category" form:"category"`
	Description formValue `json:"description" form:"description"`
}

func (p productPayload) input() inventory.ProductInput {
	return inventory.ProductInput{
		Name:        p.Name.String(),
		Price:       p.Price.String(),
		Quantity:    p.Quantity.String(),
		Category:    p.Category.String(),
		Description: p.Description.String(),
	}
}

// registerProductRoutes registers the product list, form, CRUD and export endpoints
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiGET("/products/new", newProductForm)
	webserver.ApiGET("/products/export.csv", exportProductsCSV)
	webserver.ApiGET("/products/export.xlsx", exportProductsXLSX)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiGET("/products/:id/edit", editProductForm)
	webserver.ApiPOST("/products/:id", updateProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiGET("/products/:id/delete", confirmDeleteProduct)
	webserver.ApiPOST("/products/:id/delete", deleteProduct)
}

func listProducts(c echo.Context) error {
	q := inventory.ProductQuery{
		Search: c.QueryParam("search"),
		Sort:   c.QueryParam("sort"),
	}
	size := inventory.ParsePageSize(c.QueryParam("per_page"))

	list, err := GetInventory(c).ListProducts(requestContext(c), q, c.QueryParam("page"), size)
	if err != nil {
		return failFromError(c, err, "product")
	}

	return paged(c, list.Items, list.Page, map[string]interface{}{
		"search":        list.Query.Search,
		"sort":          list.Query.Sort,
		"sort_fallback": list.SortFallback,
		"sort_keys":     inventory.SortKeys(),
	})
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	p, err := GetInventory(c).GetProduct(requestContext(c), id)
	if err != nil {
		return failFromError(c, err, "product")
	}
	return ok(c, p)
}

// newProductForm returns what an empty product form needs: the category choices
func newProductForm(c echo.Context) error {
	categories, err := GetInventory(c).ListCategories(requestContext(c))
	if err != nil {
		return failFromError(c, err, "product")
	}
	return ok(c, map[string]interface{}{
		"categories": categories,
		"product":    nil,
	})
}

func editProductForm(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	ctx := requestContext(c)
	p, err := GetInventory(c).GetProduct(ctx, id)
	if err != nil {
		return failFromError(c, err, "product")
	}
	categories, err := GetInventory(c).ListCategories(ctx)
	if err != nil {
		return failFromError(c, err, "product")
	}
	return ok(c, map[string]interface{}{
		"categories": categories,
		"product":    p,
	})
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", nil)
	}

	p, ev, err := GetInventory(c).CreateProduct(requestContext(c), payload.input())
	if err != nil {
		return failFromError(c, err, "product")
	}
	return okMsg(c, notify(c, ev), p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", nil)
	}

	p, ev, err := GetInventory(c).UpdateProduct(requestContext(c), id, payload.input())
	if err != nil {
		return failFromError(c, err, "product")
	}
	return okMsg(c, notify(c, ev), p)
}

// confirmDeleteProduct is the confirmation step; nothing is removed until the POST
func confirmDeleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	p, err := GetInventory(c).GetProduct(requestContext(c), id)
	if err != nil {
		return failFromError(c, err, "product")
	}
	return ok(c, map[string]interface{}{
		"product": p,
		"confirm": "Are you sure you want to delete \"" + p.Name + "\"?",
	})
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	p, ev, err := GetInventory(c).DeleteProduct(requestContext(c), id)
	if err != nil {
		return failFromError(c, err, "product")
	}
	return okMsg(c, notify(c, ev), map[string]interface{}{"id": p.ID, "name": p.Name})
}
