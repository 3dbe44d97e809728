package app

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/farmstock/config"
	"github.com/talkincode/farmstock/internal/domain"
	"github.com/talkincode/farmstock/internal/inventory"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	cfg := config.NewDefaultAppConfig()
	cfg.Database = config.DBConfig{Type: "sqlite", Name: ":memory:"}

	db, err := getDatabase(cfg.Database, t.TempDir())
	require.NoError(t, err)

	a := NewApplication(cfg)
	a.OverrideDB(db)
	require.NoError(t, a.MigrateDB(false))
	require.NoError(t, a.InitServices())
	t.Cleanup(a.Release)
	return a
}

func TestCheckSuperCreatesAndRepairs(t *testing.T) {
	a := newTestApplication(t)

	a.checkSuper()
	var opr domain.SysOpr
	require.NoError(t, a.DB().Where("username = ?", superUsername).First(&opr).Error)
	assert.True(t, CheckPassword(opr.Password, defaultPassword))
	assert.Equal(t, domain.ENABLED, opr.Status)

	require.NoError(t, a.DB().Model(&domain.SysOpr{}).Where("id = ?", opr.ID).
		Updates(map[string]interface{}{"status": domain.DISABLED, "level": "viewer"}).Error)
	a.checkSuper()

	require.NoError(t, a.DB().Where("id = ?", opr.ID).First(&opr).Error)
	assert.Equal(t, domain.ENABLED, opr.Status)
	assert.Equal(t, "super", opr.Level)
}

func TestInventoryEventsWriteOperationLog(t *testing.T) {
	a := newTestApplication(t)
	ctx := inventory.WithActor(context.Background(), inventory.Actor{Name: "admin", IP: "127.0.0.1"})

	c, _, err := a.Inventory().CreateCategory(ctx, inventory.CategoryInput{Name: "Dairy"})
	require.NoError(t, err)
	_, _, err = a.Inventory().CreateProduct(ctx, inventory.ProductInput{
		Name: "Milk", Price: "2.50", Quantity: "3", Category: strconv.FormatInt(c.ID, 10),
	})
	require.NoError(t, err)
	_, _, err = a.Inventory().DeleteCategory(ctx, c.ID)
	require.ErrorIs(t, err, inventory.ErrCategoryInUse)

	var logs []domain.SysOprLog
	require.NoError(t, a.DB().Order("id ASC").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, "category_create", logs[0].OptAction)
	assert.Equal(t, "product_create", logs[1].OptAction)
	assert.Equal(t, `Product "Milk" added successfully!`, logs[1].OptDesc)
	assert.Equal(t, "admin", logs[1].OprName)
	assert.Equal(t, "127.0.0.1", logs[1].OprIp)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestGetDatabaseRejectsUnknownType(t *testing.T) {
	_, err := getDatabase(config.DBConfig{Type: "oracle"}, t.TempDir())
	assert.Error(t, err)
}

func TestInsecureDefaults(t *testing.T) {
	a := newTestApplication(t)
	a.checkSuper()
	assert.Equal(t, []string{"web.secret", "admin password"}, a.insecureDefaults())

	a.Config().Web.Secret = "rotated"
	hashed, err := HashPassword("changed")
	require.NoError(t, err)
	require.NoError(t, a.DB().Model(&domain.SysOpr{}).Where("username = ?", superUsername).
		Update("password", hashed).Error)
	assert.Empty(t, a.insecureDefaults())
}
