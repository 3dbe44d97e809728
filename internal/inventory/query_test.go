package inventory

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSort(t *testing.T) {
	testCases := []struct {
		sort   string
		clause string
		key    string
		ok     bool
	}{
		{"", "product.name ASC, product.id ASC", "name", true},
		{"name", "product.name ASC, product.id ASC", "name", true},
		{"-price", "product.price DESC, product.id ASC", "-price", true},
		{" Quantity ", "product.quantity ASC, product.id ASC", "quantity", true},
		{"category", "category.name ASC, product.id ASC", "category", true},
		{"-id", "product.id DESC", "-id", true},
		{"password", "product.name ASC, product.id ASC", "name", false},
		{"name; DROP TABLE product", "product.name ASC, product.id ASC", "name", false},
	}
	for _, tc := range testCases {
		t.Run(tc.sort, func(t *testing.T) {
			ord, ok := ResolveSort(tc.sort)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.clause, ord.Clause())
			assert.Equal(t, tc.key, ord.String())
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\x`, escapeLike(`c:\x`))
}

func TestProductSearchIsCaseInsensitiveSubstring(t *testing.T) {
	_, db, _ := newTestService(t)
	dairy := seedCategory(t, db, "Dairy")
	for _, name := range []string{"Milk", "Buttermilk", "Eggs", "MILKSHAKE", "Cheese", "50% Cream"} {
		seedProduct(t, db, name, "1.00", 10, dairy)
	}
	repo := NewGormRepository(db).Products()

	for _, search := range []string{"milk", "MiLk", "e", "50%", "_"} {
		items, _, err := repo.Search(context.Background(), ProductQuery{Search: search}, "1", MaxPageSize)
		require.NoError(t, err)
		for _, p := range items {
			assert.Contains(t, strings.ToLower(p.Name), strings.ToLower(search))
		}
	}

	items, _, err := repo.Search(context.Background(), ProductQuery{Search: "milk"}, "1", MaxPageSize)
	require.NoError(t, err)
	// sqlite compares names bytewise
	assert.Equal(t, []string{"Buttermilk", "MILKSHAKE", "Milk"}, productNames(items))

	// wildcards in the search term match literally
	items, _, err = repo.Search(context.Background(), ProductQuery{Search: "50%"}, "1", MaxPageSize)
	require.NoError(t, err)
	assert.Equal(t, []string{"50% Cream"}, productNames(items))

	items, _, err = repo.Search(context.Background(), ProductQuery{Search: "_"}, "1", MaxPageSize)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestProductSearchOrdering(t *testing.T) {
	_, db, _ := newTestService(t)
	dairy := seedCategory(t, db, "Dairy")
	bakery := seedCategory(t, db, "Bakery")
	seedProduct(t, db, "Milk", "2.50", 3, dairy)
	seedProduct(t, db, "Bread", "3.10", 8, bakery)
	seedProduct(t, db, "Eggs", "4.00", 10, dairy)
	repo := NewGormRepository(db).Products()

	testCases := []struct {
		sort  string
		names []string
	}{
		{"", []string{"Bread", "Eggs", "Milk"}},
		{"-name", []string{"Milk", "Eggs", "Bread"}},
		{"price", []string{"Milk", "Bread", "Eggs"}},
		{"-quantity", []string{"Eggs", "Bread", "Milk"}},
		{"category", []string{"Bread", "Milk", "Eggs"}},
		{"unknown_column", []string{"Bread", "Eggs", "Milk"}},
	}
	for _, tc := range testCases {
		t.Run(tc.sort, func(t *testing.T) {
			items, _, err := repo.Search(context.Background(), ProductQuery{Sort: tc.sort}, "1", MaxPageSize)
			require.NoError(t, err)
			assert.Equal(t, tc.names, productNames(items))
			for _, p := range items {
				require.NotNil(t, p.Category)
			}
		})
	}
}

func TestProductSearchPagesCoverResultOnce(t *testing.T) {
	_, db, _ := newTestService(t)
	c := seedCategory(t, db, "Produce")
	for _, name := range []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9", "a10", "a11", "a12"} {
		seedProduct(t, db, name, "1.00", 1, c)
	}
	repo := NewGormRepository(db).Products()

	all, _, err := repo.Search(context.Background(), ProductQuery{}, "1", MaxPageSize)
	require.NoError(t, err)

	var joined []string
	_, first, err := repo.Search(context.Background(), ProductQuery{}, "1", DefaultPageSize)
	require.NoError(t, err)
	assert.Equal(t, 3, first.TotalPages)
	for page := 1; page <= first.TotalPages; page++ {
		items, _, err := repo.Search(context.Background(), ProductQuery{}, strconv.Itoa(page), DefaultPageSize)
		require.NoError(t, err)
		joined = append(joined, productNames(items)...)
	}
	assert.Equal(t, productNames(all), joined)

	// out of range page numbers clamp to the last page
	items, pg, err := repo.Search(context.Background(), ProductQuery{}, "42", DefaultPageSize)
	require.NoError(t, err)
	assert.Equal(t, 3, pg.Number)
	assert.Len(t, items, 2)
}

func TestProductSearchNonASCIINames(t *testing.T) {
	_, db, _ := newTestService(t)
	produce := seedCategory(t, db, "Produce")
	seedProduct(t, db, "Äpfel", "1.00", 10, produce)
	seedProduct(t, db, "Birnen", "1.00", 10, produce)
	repo := NewGormRepository(db).Products()

	// ASCII letters fold on every dialect; non-ASCII ones fold on postgres only
	for _, search := range []string{"Äpfel", "PFEL", "Äp"} {
		items, _, err := repo.Search(context.Background(), ProductQuery{Search: search}, "1", MaxPageSize)
		require.NoError(t, err)
		assert.Equal(t, []string{"Äpfel"}, productNames(items), search)
	}
}
