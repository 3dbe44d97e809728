package adminapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/talkincode/farmstock/internal/app"
	"github.com/talkincode/farmstock/internal/inventory"
	"github.com/talkincode/farmstock/internal/webserver"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Response is the envelope every admin API handler writes
type Response struct {
	Code    int         `json:"code"`
	Error   string      `json:"error,omitempty"`
	Msg     string      `json:"msg,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Page    interface{} `json:"page,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Code: 0, Msg: "ok", Data: data})
}

func okMsg(c echo.Context, msg string, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Code: 0, Msg: msg, Data: data})
}

func paged(c echo.Context, data interface{}, page inventory.Page, meta interface{}) error {
	return c.JSON(http.StatusOK, Response{Code: 0, Msg: "ok", Data: data, Page: page, Meta: meta})
}

func fail(c echo.Context, status int, code, msg string, details interface{}) error {
	return c.JSON(status, Response{Code: status, Error: code, Msg: msg, Details: details})
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB().WithContext(c.Request().Context())
}

func GetInventory(c echo.Context) *inventory.Service {
	return GetAppContext(c).Inventory()
}

// requestContext carries the logged-in operator and client address into the service layer
func requestContext(c echo.Context) context.Context {
	return inventory.WithActor(c.Request().Context(), inventory.Actor{
		Name: webserver.CurrentOperator(c),
		IP:   c.RealIP(),
	})
}

// notify queues the mutation's success message as a flash and returns it
func notify(c echo.Context, ev inventory.Event) string {
	msg := ev.Message()
	webserver.Server().Auth().AddFlash(c, webserver.FlashSuccess, msg)
	return msg
}

func handleValidationError(c echo.Context, err error) error {
	var verr *inventory.ValidationError
	if errors.As(inventory.ValidationErrorFrom(err), &verr) {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", verr.Fields)
	}
	return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", nil)
}

// failFromError maps inventory errors onto the envelope; entity is "product" or "category".
func failFromError(c echo.Context, err error, entity string) error {
	var verr *inventory.ValidationError
	var inUse *inventory.CategoryInUseError
	switch {
	case errors.As(err, &verr):
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "Please correct the errors below.", verr.Fields)
	case errors.Is(err, inventory.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	case errors.Is(err, inventory.ErrCategoryNotFound):
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
	case errors.As(err, &inUse):
		return fail(c, http.StatusConflict, "CATEGORY_IN_USE", "Category is in use by products and cannot be deleted",
			map[string]interface{}{"product_count": inUse.Products})
	case errors.Is(err, inventory.ErrCategoryExists):
		return fail(c, http.StatusConflict, "CATEGORY_EXISTS", "Category name already exists", nil)
	}

	zap.L().Error("inventory request failed",
		zap.String("namespace", "adminapi"),
		zap.String("entity", entity),
		zap.String("path", c.Path()),
		zap.Error(err))
	return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to process "+entity, nil)
}

// formValue accepts a form field posted either as a JSON string or a bare JSON number.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	switch {
	case len(b) == 0 || string(b) == "null":
		*v = ""
	case b[0] == '"':
		var s string
		if err := jsoniter.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = formValue(s)
	case b[0] == '{' || b[0] == '[':
		return errors.New("expected a string or number")
	default:
		*v = formValue(b)
	}
	return nil
}

func (v *formValue) UnmarshalParam(param string) error {
	*v = formValue(param)
	return nil
}

func (v formValue) String() string {
	return string(v)
}
