package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
)

var productColumnNames = []string{"id", "title", "description", "price", "category", "status", "stock", "images", "created_at", "updated_at"}

func addProductRow(rows *pgxmockv3.Rows, id int64, title string, stock int, at time.Time) *pgxmockv3.Rows {
	return rows.AddRow(id, title, "a dozen red roses", 500.0, "bouquets", "active", stock,
		[]byte(`["https://cdn.example/rose.jpg"]`), at, at)
}

func TestProductRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &productRepository{storage: storage}

	now := time.Now()
	product := &model.Product{
		Title:    "Rose Bouquet",
		Price:    decimal.NewFromInt(500),
		Category: "bouquets",
		Status:   model.ProductStatusActive,
		Stock:    5,
	}

	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Rose Bouquet", "", 500.0, "bouquets", "active", 5, []byte("[]")).
		WillReturnRows(addProductRow(pgxmockv3.NewRows(productColumnNames), 1, "Rose Bouquet", 5, now))
	created, err := repo.Create(context.Background(), product)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 1 || !created.Price.Equal(decimal.NewFromInt(500)) || len(created.Images) != 1 {
		t.Fatalf("unexpected product: %+v", created)
	}

	mock.ExpectQuery("INSERT INTO products").WithArgs(anyArgs(7)...).WillReturnError(&pgconn.PgError{Code: "23514", Message: "violates check constraint"})
	if _, err := repo.Create(context.Background(), product); !errors.Is(err, domainErrors.ErrInvalidProduct) {
		t.Fatalf("expected invalid product, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO products").WithArgs(anyArgs(7)...).WillReturnError(errors.New("insert"))
	if _, err := repo.Create(context.Background(), product); err == nil || errors.Is(err, domainErrors.ErrInvalidProduct) {
		t.Fatalf("expected raw error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestProductRepositoryUpdate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &productRepository{storage: storage}

	now := time.Now()
	product := &model.Product{ID: 1, Title: "Rose Bouquet", Price: decimal.NewFromInt(500), Status: model.ProductStatusActive, Images: []string{"https://cdn.example/rose.jpg"}}

	mock.ExpectQuery("UPDATE products SET title=").
		WithArgs(int64(1), "Rose Bouquet", "", 500.0, "", "active", pgxmockv3.AnyArg()).
		WillReturnRows(addProductRow(pgxmockv3.NewRows(productColumnNames), 1, "Rose Bouquet", 4, now))
	updated, err := repo.Update(context.Background(), product)
	if err != nil || updated.Stock != 4 {
		t.Fatalf("unexpected result: %+v err=%v", updated, err)
	}

	mock.ExpectQuery("UPDATE products SET title=").WithArgs(anyArgs(7)...).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Update(context.Background(), product); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("UPDATE products SET title=").WithArgs(anyArgs(7)...).WillReturnError(&pgconn.PgError{Code: "23502"})
	if _, err := repo.Update(context.Background(), product); !errors.Is(err, domainErrors.ErrInvalidProduct) {
		t.Fatalf("expected invalid product, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestProductRepositoryDelete(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &productRepository{storage: storage}

	mock.ExpectExec("DELETE FROM products").WithArgs(int64(1)).WillReturnResult(pgxmockv3.NewResult("DELETE", 1))
	if err := repo.Delete(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("DELETE FROM products").WithArgs(int64(2)).WillReturnResult(pgxmockv3.NewResult("DELETE", 0))
	if err := repo.Delete(context.Background(), 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("DELETE FROM products").WithArgs(int64(3)).WillReturnError(errors.New("delete"))
	if err := repo.Delete(context.Background(), 3); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestProductRepositoryLookups(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &productRepository{storage: storage}

	now := time.Now()

	mock.ExpectQuery("SELECT id, title").WithArgs(int64(1)).
		WillReturnRows(addProductRow(pgxmockv3.NewRows(productColumnNames), 1, "Rose Bouquet", 5, now))
	p, err := repo.GetByID(context.Background(), 1)
	if err != nil || p.Title != "Rose Bouquet" || p.Status != model.ProductStatusActive {
		t.Fatalf("unexpected product: %+v err=%v", p, err)
	}

	mock.ExpectQuery("SELECT id, title").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("SELECT id, title").WithArgs("Rose Bouquet").
		WillReturnRows(addProductRow(pgxmockv3.NewRows(productColumnNames), 1, "Rose Bouquet", 5, now))
	if p, err := repo.GetByTitle(context.Background(), "Rose Bouquet"); err != nil || p.ID != 1 {
		t.Fatalf("unexpected product: %+v err=%v", p, err)
	}

	mock.ExpectQuery("SELECT id, title").WithArgs("Tulips").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByTitle(context.Background(), "Tulips"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("SELECT id, title").WithArgs("boom").WillReturnError(errors.New("fail"))
	if _, err := repo.GetByTitle(context.Background(), "boom"); err == nil || errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected raw error, got %v", err)
	}

	mock.ExpectQuery("SELECT id, title").WithArgs(int64(9)).WillReturnRows(
		pgxmockv3.NewRows(productColumnNames).AddRow(int64(9), "Broken", "", 1.0, "", "active", 1, []byte(`{`), now, now))
	if _, err := repo.GetByID(context.Background(), 9); err == nil {
		t.Fatal("expected decode error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestProductRepositoryList(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &productRepository{storage: storage}

	now := time.Now()
	rows := pgxmockv3.NewRows(productColumnNames)
	addProductRow(rows, 1, "Rose Bouquet", 5, now)
	addProductRow(rows, 2, "Rose Box", 0, now)

	filter := model.ProductFilter{Query: "rose", Category: "bouquets", Status: model.ProductStatusActive, Limit: 20, Offset: 0}
	mock.ExpectQuery("SELECT id, title").WithArgs("rose", "bouquets", "active", 20, 0).WillReturnRows(rows)
	products, err := repo.List(context.Background(), filter)
	if err != nil || len(products) != 2 {
		t.Fatalf("unexpected result: %v err=%v", products, err)
	}

	mock.ExpectQuery("SELECT id, title").WithArgs(anyArgs(5)...).WillReturnError(errors.New("query"))
	if _, err := repo.List(context.Background(), filter); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestProductRepositoryListRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows")}}}
	repo := &productRepository{storage: storage}
	if _, err := repo.List(context.Background(), model.ProductFilter{Limit: 1}); err == nil {
		t.Fatal("expected rows error")
	}
}
