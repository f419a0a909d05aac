package category

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db, NewService(db)
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *database.Category {
	t.Helper()
	category := &database.Category{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

func seedProductIn(t *testing.T, db *gorm.DB, name, categoryName string) *database.Product {
	t.Helper()
	product := &database.Product{Name: name, Category: categoryName, Stock: 5}
	require.NoError(t, db.Create(product).Error)
	return product
}

func categoryOf(t *testing.T, db *gorm.DB, id uuid.UUID) string {
	t.Helper()
	var product database.Product
	require.NoError(t, db.Where("id = ?", id).First(&product).Error)
	return product.Category
}

func TestRename_CascadesToProducts(t *testing.T) {
	db, svc := newTestService(t)
	bebidas := seedCategory(t, db, "Bebidas")
	seedCategory(t, db, "Snacks")

	soda := seedProductIn(t, db, "Gaseosa 3L", "Bebidas")
	juice := seedProductIn(t, db, "Jugo de Naranja", "Bebidas")
	chips := seedProductIn(t, db, "Papas Fritas", "Snacks")

	renamed, err := svc.Rename(bebidas.ID, "Bebidas y Refrescos")
	require.NoError(t, err)
	require.Equal(t, "Bebidas y Refrescos", renamed.Name)

	require.Equal(t, "Bebidas y Refrescos", categoryOf(t, db, soda.ID))
	require.Equal(t, "Bebidas y Refrescos", categoryOf(t, db, juice.ID))
	require.Equal(t, "Snacks", categoryOf(t, db, chips.ID))

	// Category rewrites never touch the stock ledger.
	var entries int64
	db.Model(&database.StockHistory{}).Count(&entries)
	require.Zero(t, entries)
}

func TestRename_SameNameIsNoop(t *testing.T) {
	db, svc := newTestService(t)
	category := seedCategory(t, db, "Limpieza")

	renamed, err := svc.Rename(category.ID, "Limpieza")
	require.NoError(t, err)
	require.Equal(t, "Limpieza", renamed.Name)
}

func TestDelete_ClearsProducts(t *testing.T) {
	db, svc := newTestService(t)
	category := seedCategory(t, db, "Licores")
	beer := seedProductIn(t, db, "Cerveza Rubia", "Licores")
	other := seedProductIn(t, db, "Pan de Molde", "Panadería")

	require.NoError(t, svc.Delete(category.ID))

	var count int64
	db.Model(&database.Category{}).Where("name = ?", "Licores").Count(&count)
	require.Zero(t, count)

	require.Equal(t, "", categoryOf(t, db, beer.ID))
	require.Equal(t, "Panadería", categoryOf(t, db, other.ID))
}

func TestRename_MissingCategory(t *testing.T) {
	_, svc := newTestService(t)

	_, err := svc.Rename(uuid.New(), "Nueva")
	require.ErrorIs(t, err, database.ErrCategoryNotFound)

	err = svc.Delete(uuid.New())
	require.ErrorIs(t, err, database.ErrCategoryNotFound)
}
