// Package graphqlserver wires the read-only GraphQL endpoint used by
// reporting dashboards. Mutations stay on the REST surface where the
// lifecycle rules live.
package graphqlserver

import (
	"context"
	"errors"
	"net/http"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"partstrack/api"
	"partstrack/graphql"
	gqlmodels "partstrack/graphql/models"
	"partstrack/model/entity"
	partRepo "partstrack/model/repository/part"
)

func init() {
	api.RegisterRoute(func(e *echo.Echo, deps *api.Deps) {
		schema, err := NewSchema(deps.DB)
		if err != nil {
			panic("graphqlserver: invalid schema: " + err.Error())
		}
		e.Any("/graphql", echo.WrapHandler(Handler(schema)))
	})
}

// RootResolver is the root for graphql-go.
type RootResolver struct {
	DB *gorm.DB
}

func (r *RootResolver) Query() *QueryResolver {
	return &QueryResolver{db: r.DB}
}

// QueryResolver implements the Query fields.
type QueryResolver struct {
	db *gorm.DB
}

type PartArgs struct {
	ID int32
}

func (r *QueryResolver) Part(ctx context.Context, args PartArgs) (*gqlmodels.Part, error) {
	var p entity.Part
	err := r.db.WithContext(ctx).First(&p, "part_id = ?", args.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return gqlmodels.FromPart(&p), nil
}

type PartsArgs struct {
	Name   *string
	Status *string
}

func (r *QueryResolver) Parts(ctx context.Context, args PartsArgs) ([]*gqlmodels.Part, error) {
	f := partRepo.ListFilter{Sort: "name"}
	if args.Name != nil {
		f.Name = *args.Name
	}
	if args.Status != nil {
		f.Status = *args.Status
	}
	parts, err := partRepo.NewPartRepository(r.db.WithContext(ctx)).List(f)
	if err != nil {
		return nil, err
	}
	return gqlmodels.FromParts(parts), nil
}

type LowStockArgs struct {
	Threshold *int32
}

func (r *QueryResolver) LowStockParts(ctx context.Context, args LowStockArgs) ([]*gqlmodels.Part, error) {
	var threshold *int
	if args.Threshold != nil {
		n := int(*args.Threshold)
		threshold = &n
	}
	parts, err := partRepo.NewPartRepository(r.db.WithContext(ctx)).LowStock(threshold)
	if err != nil {
		return nil, err
	}
	return gqlmodels.FromParts(parts), nil
}

type PurchaseOrderArgs struct {
	ID int32
}

func (r *QueryResolver) PurchaseOrder(ctx context.Context, args PurchaseOrderArgs) (*gqlmodels.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Items").
		Preload("Items.Part").
		First(&po, "po_id = ?", args.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return gqlmodels.FromPurchaseOrder(&po), nil
}

type PurchaseOrdersArgs struct {
	Status *string
}

func (r *QueryResolver) PurchaseOrders(ctx context.Context, args PurchaseOrdersArgs) ([]*gqlmodels.PurchaseOrder, error) {
	q := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Items").
		Preload("Items.Part").
		Order("created_at DESC")
	if args.Status != nil && *args.Status != "" {
		q = q.Where("status = ?", *args.Status)
	}
	var orders []entity.PurchaseOrder
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return gqlmodels.FromPurchaseOrders(orders), nil
}

// NewSchema parses the schema and returns a graphql-go Schema.
func NewSchema(db *gorm.DB) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), &RootResolver{DB: db}, gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) http.Handler {
	return &relay.Handler{Schema: schema}
}
