package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/farmstock/internal/inventory"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), rec
}

func TestFailFromErrorHidesStoreErrors(t *testing.T) {
	c, rec := newContext()
	err := errors.Wrap(errors.New(`pq: relation "product" does not exist`), "search products")

	require.NoError(t, failFromError(c, err, "product"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"DATABASE_ERROR"`)
	assert.NotContains(t, rec.Body.String(), "relation")
	assert.NotContains(t, rec.Body.String(), "details")
}

func TestFailFromErrorMapping(t *testing.T) {
	testCases := []struct {
		err    error
		status int
		code   string
	}{
		{inventory.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{errors.Wrap(inventory.ErrCategoryNotFound, "lookup"), http.StatusNotFound, "CATEGORY_NOT_FOUND"},
		{inventory.ErrCategoryExists, http.StatusConflict, "CATEGORY_EXISTS"},
		{&inventory.CategoryInUseError{CategoryID: 1, Products: 2}, http.StatusConflict, "CATEGORY_IN_USE"},
		{&inventory.ValidationError{Fields: map[string]string{"name": "This field is required."}}, http.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			c, rec := newContext()
			require.NoError(t, failFromError(c, tc.err, "product"))
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error":"`+tc.code+`"`)
		})
	}
}

func TestFormValueUnmarshal(t *testing.T) {
	var v formValue
	require.NoError(t, v.UnmarshalJSON([]byte(`2.5`)))
	assert.Equal(t, "2.5", v.String())
	require.NoError(t, v.UnmarshalJSON([]byte(`"Milk"`)))
	assert.Equal(t, "Milk", v.String())
	require.NoError(t, v.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, "", v.String())
	assert.Error(t, v.UnmarshalJSON([]byte(`{"a":1}`)))
}
