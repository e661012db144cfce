package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dkorovin/tagproof/internal/errs"
	"github.com/dkorovin/tagproof/internal/model"
)

// AssetRepo implements repository.AssetCache using PostgreSQL.
type AssetRepo struct{ db *DB }

// NewAssetRepo constructs an asset cache repository.
func NewAssetRepo(db *DB) *AssetRepo { return &AssetRepo{db: db} }

// isUniqueViolation reports whether the error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}

const assetColumns = `id, name, description, manufacturer, manufacturer_name, category,
image_url, properties, current_owner, registered_on_ledger, is_template, template_id, created_at`

// Get selects an asset by id.
func (r *AssetRepo) Get(ctx context.Context, id string) (*model.Asset, error) {
	const q = `
SELECT ` + assetColumns + `
FROM assets WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var a model.Asset
	if err := row.Scan(
		&a.ID, &a.Name, &a.Description, &a.Manufacturer, &a.ManufacturerName, &a.Category,
		&a.ImageURL, &a.Properties, &a.CurrentOwner, &a.RegisteredOnLedger, &a.IsTemplate,
		&a.TemplateID, &a.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new asset row.
func (r *AssetRepo) Create(ctx context.Context, a *model.Asset) error {
	const q = `
INSERT INTO assets (id, name, description, manufacturer, manufacturer_name, category,
image_url, properties, current_owner, registered_on_ledger, is_template, template_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := r.db.Pool.Exec(ctx, q,
		a.ID, a.Name, a.Description, a.Manufacturer, a.ManufacturerName, a.Category,
		a.ImageURL, a.Properties, a.CurrentOwner, a.RegisteredOnLedger, a.IsTemplate, a.TemplateID,
	)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Update rewrites an existing asset row.
func (r *AssetRepo) Update(ctx context.Context, a *model.Asset) error {
	const q = `
UPDATE assets
SET name=$2, description=$3, manufacturer=$4, manufacturer_name=$5, category=$6,
image_url=$7, properties=$8, current_owner=$9, registered_on_ledger=$10,
is_template=$11, template_id=$12
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q,
		a.ID, a.Name, a.Description, a.Manufacturer, a.ManufacturerName, a.Category,
		a.ImageURL, a.Properties, a.CurrentOwner, a.RegisteredOnLedger, a.IsTemplate, a.TemplateID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ForceSync upserts a ledger-derived asset, replacing any stale local row.
func (r *AssetRepo) ForceSync(ctx context.Context, a *model.Asset) error {
	const q = `
INSERT INTO assets (id, name, description, manufacturer, manufacturer_name, category,
image_url, properties, current_owner, registered_on_ledger, is_template, template_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE
SET name=EXCLUDED.name, description=EXCLUDED.description,
manufacturer=EXCLUDED.manufacturer, manufacturer_name=EXCLUDED.manufacturer_name,
category=EXCLUDED.category, image_url=EXCLUDED.image_url,
properties=EXCLUDED.properties, current_owner=EXCLUDED.current_owner,
registered_on_ledger=EXCLUDED.registered_on_ledger`
	_, err := r.db.Pool.Exec(ctx, q,
		a.ID, a.Name, a.Description, a.Manufacturer, a.ManufacturerName, a.Category,
		a.ImageURL, a.Properties, a.CurrentOwner, a.RegisteredOnLedger, a.IsTemplate, a.TemplateID,
	)
	return err
}
