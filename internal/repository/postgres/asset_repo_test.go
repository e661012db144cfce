package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/dkorovin/tagproof/internal/errs"
	"github.com/dkorovin/tagproof/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func assetRows(a model.Asset) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "description", "manufacturer", "manufacturer_name", "category",
		"image_url", "properties", "current_owner", "registered_on_ledger", "is_template",
		"template_id", "created_at",
	}).AddRow(
		a.ID, a.Name, a.Description, a.Manufacturer, a.ManufacturerName, a.Category,
		a.ImageURL, a.Properties, a.CurrentOwner, a.RegisteredOnLedger, a.IsTemplate,
		a.TemplateID, a.CreatedAt,
	)
}

func TestAssetRepo_Get_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAssetRepo(db)

	want := model.Asset{
		ID: "AABBCC", Name: "Field Watch", Category: "Watches",
		Properties:   map[string]string{"serial": "SN-42"},
		CurrentOwner: "alice", RegisteredOnLedger: true,
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	mock.ExpectQuery(`SELECT id, name, description`).
		WithArgs("AABBCC").
		WillReturnRows(assetRows(want))

	got, err := r.Get(context.Background(), "AABBCC")
	require.NoError(t, err)
	require.Equal(t, want.Name, got.Name)
	require.Equal(t, want.Properties, got.Properties)
	require.True(t, got.RegisteredOnLedger)
}

func TestAssetRepo_Get_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAssetRepo(db)

	mock.ExpectQuery(`SELECT id, name, description`).
		WithArgs("MISSING").
		WillReturnError(pgx.ErrNoRows)

	_, err := r.Get(context.Background(), "MISSING")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAssetRepo_Create_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAssetRepo(db)

	a := &model.Asset{ID: "AABBCC", Name: "Field Watch", Properties: map[string]string{}}
	mock.ExpectExec(`INSERT INTO assets`).
		WithArgs(a.ID, a.Name, a.Description, a.Manufacturer, a.ManufacturerName, a.Category,
			a.ImageURL, a.Properties, a.CurrentOwner, a.RegisteredOnLedger, a.IsTemplate, a.TemplateID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.Create(context.Background(), a))
}

func TestAssetRepo_Create_Duplicate(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAssetRepo(db)

	mock.ExpectExec(`INSERT INTO assets`).
		WithArgs(anyArgs(12)...).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := r.Create(context.Background(), &model.Asset{ID: "AABBCC", Name: "Field Watch"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestAssetRepo_Update_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAssetRepo(db)

	mock.ExpectExec(`UPDATE assets`).
		WithArgs(anyArgs(12)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := r.Update(context.Background(), &model.Asset{ID: "MISSING", Name: "x"})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAssetRepo_Update_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAssetRepo(db)

	mock.ExpectExec(`UPDATE assets`).
		WithArgs(anyArgs(12)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, r.Update(context.Background(), &model.Asset{ID: "AABBCC", Name: "x"}))
}

func TestAssetRepo_ForceSync_Upserts(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAssetRepo(db)

	mock.ExpectExec(`ON CONFLICT \(id\) DO UPDATE`).
		WithArgs(anyArgs(12)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.ForceSync(context.Background(), &model.Asset{ID: "AABBCC", Name: "x"}))
}

func TestAssetRepo_Expectations(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAssetRepo(db)

	mock.ExpectExec(`INSERT INTO assets`).
		WithArgs(anyArgs(12)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.Create(context.Background(), &model.Asset{ID: "AABBCC", Name: "x"}))
	require.NoError(t, mock.ExpectationsWereMet())
}
