package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type shopRepo struct{ s *Store }

func (r shopRepo) Create(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	ctx, span := r.s.tracer.Start(ctx, "ShopRepository.Create")
	defer span.End()

	id, err := r.s.nextID(ctx, colShops)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	doc := newShopDoc(shop)
	doc.ID = id
	if _, err := r.s.col(colShops).InsertOne(ctx, doc); err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.s.logger, "Failed to insert shop", zap.Error(err))

		return nil, fmt.Errorf("error inserting shop: %w", err)
	}

	created := doc.toDomain()
	return &created, nil
}

func (r shopRepo) GetByID(ctx context.Context, id int64) (*domain.Shop, error) {
	var doc shopDoc
	if err := findOne(ctx, r.s.col(colShops), byID(id), &doc, repository.ErrShopNotFound); err != nil {
		return nil, err
	}

	shop := doc.toDomain()
	return &shop, nil
}

func (r shopRepo) List(ctx context.Context) ([]domain.Shop, error) {
	ctx, span := r.s.tracer.Start(ctx, "ShopRepository.List")
	defer span.End()

	var docs []shopDoc
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, r.s.col(colShops), bson.D{}, opts, &docs); err != nil {
		span.RecordError(err)
		return nil, err
	}

	shops := make([]domain.Shop, 0, len(docs))
	for _, d := range docs {
		shops = append(shops, d.toDomain())
	}

	return shops, nil
}

func (r shopRepo) Update(ctx context.Context, id int64, input *domain.UpdateShopInput) (*domain.Shop, error) {
	ctx, span := r.s.tracer.Start(ctx, "ShopRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	set := bson.D{}
	add := func(key string, v *string) {
		if v != nil {
			set = append(set, bson.E{Key: key, Value: *v})
		}
	}
	add("name", input.Name)
	add("shop_type", input.ShopType)
	add("location", input.Location)
	add("contact_number", input.ContactNumber)
	add("opening_time", input.OpeningTime)
	add("closing_time", input.ClosingTime)
	add("description", input.Description)

	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	var doc shopDoc
	err := r.s.col(colShops).FindOneAndUpdate(
		ctx,
		byID(id),
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrShopNotFound
		}

		span.RecordError(err)
		return nil, fmt.Errorf("error updating shop: %w", err)
	}

	shop := doc.toDomain()
	return &shop, nil
}

func (r shopRepo) Delete(ctx context.Context, id int64) error {
	ctx, span := r.s.tracer.Start(ctx, "ShopRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	err := r.s.inTx(ctx, func(sc mongo.SessionContext) error {
		found, err := exists(sc, r.s.col(colShops), byID(id))
		if err != nil {
			return err
		}
		if !found {
			return repository.ErrShopNotFound
		}

		var owned []productDoc
		if err := findAll(sc, r.s.col(colProducts), bson.D{{Key: "shop_id", Value: id}}, nil, &owned); err != nil {
			return err
		}

		ids := make([]int64, 0, len(owned))
		for _, p := range owned {
			ids = append(ids, p.ID)
		}

		if len(ids) > 0 {
			ordered, err := exists(sc, r.s.col(colOrders), bson.D{{Key: "items.product_id", Value: bson.D{{Key: "$in", Value: ids}}}})
			if err != nil {
				return err
			}
			if ordered {
				return repository.ErrReferencedByOrders
			}

			if _, err := r.s.col(colProducts).DeleteMany(sc, bson.D{{Key: "shop_id", Value: id}}); err != nil {
				return fmt.Errorf("error deleting shop products: %w", err)
			}
		}

		if _, err := r.s.col(colShops).DeleteOne(sc, byID(id)); err != nil {
			return fmt.Errorf("error deleting shop: %w", err)
		}

		return nil
	})
	if err != nil {
		span.RecordError(err)
	}

	return err
}

type productRepo struct{ s *Store }

// views attaches shop and category names to products.
func (r productRepo) views(ctx context.Context, docs []productDoc) ([]domain.Product, error) {
	shopIDs := make([]int64, 0, len(docs))
	categoryIDs := make([]int64, 0)
	for _, d := range docs {
		shopIDs = append(shopIDs, d.ShopID)
		if d.CategoryID != nil {
			categoryIDs = append(categoryIDs, *d.CategoryID)
		}
	}

	shops, err := r.s.shopNames(ctx, shopIDs)
	if err != nil {
		return nil, err
	}

	var categories []categoryDoc
	if len(categoryIDs) > 0 {
		if err := findAll(ctx, r.s.col(colCategories), inIDs(categoryIDs), nil, &categories); err != nil {
			return nil, err
		}
	}
	categoryNames := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	products := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		p := d.toDomain()
		p.ShopName = shops[p.ShopID]
		if p.CategoryID != nil {
			p.CategoryName = categoryNames[*p.CategoryID]
		}
		products = append(products, p)
	}

	return products, nil
}

func (r productRepo) view(ctx context.Context, doc productDoc) (*domain.Product, error) {
	products, err := r.views(ctx, []productDoc{doc})
	if err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r productRepo) checkRefs(ctx context.Context, shopID int64, categoryID *int64) error {
	found, err := exists(ctx, r.s.col(colShops), byID(shopID))
	if err != nil {
		return err
	}
	if !found {
		return repository.ErrShopNotFound
	}

	if categoryID != nil {
		found, err := exists(ctx, r.s.col(colCategories), byID(*categoryID))
		if err != nil {
			return err
		}
		if !found {
			return repository.ErrCategoryNotFound
		}
	}

	return nil
}

func (r productRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, span := r.s.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.Int64("shop_id", product.ShopID))

	var doc productDoc
	err := r.s.inTx(ctx, func(sc mongo.SessionContext) error {
		if err := r.checkRefs(sc, product.ShopID, product.CategoryID); err != nil {
			return err
		}

		var err error
		doc, err = newProductDoc(product)
		if err != nil {
			return err
		}

		doc.ID, err = r.s.nextID(sc, colProducts)
		if err != nil {
			return err
		}

		if _, err := r.s.col(colProducts).InsertOne(sc, doc); err != nil {
			return fmt.Errorf("error inserting product: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.view(ctx, doc)
}

func (r productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var doc productDoc
	if err := findOne(ctx, r.s.col(colProducts), byID(id), &doc, repository.ErrProductNotFound); err != nil {
		return nil, err
	}
	return r.view(ctx, doc)
}

func (r productRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, span := r.s.tracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	query := bson.D{}
	if filter.CategoryID != nil {
		query = append(query, bson.E{Key: "category_id", Value: *filter.CategoryID})
	}
	if filter.ShopID != nil {
		query = append(query, bson.E{Key: "shop_id", Value: *filter.ShopID})
	}

	var docs []productDoc
	if err := findAll(ctx, r.s.col(colProducts), query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}), &docs); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.views(ctx, docs)
}

func (r productRepo) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) (*domain.Product, error) {
	ctx, span := r.s.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	var doc productDoc
	err := r.s.inTx(ctx, func(sc mongo.SessionContext) error {
		if err := findOne(sc, r.s.col(colProducts), byID(id), &doc, repository.ErrProductNotFound); err != nil {
			return err
		}

		p := doc.toDomain()
		input.Apply(&p)

		if err := r.checkRefs(sc, p.ShopID, p.CategoryID); err != nil {
			return err
		}

		var err error
		doc, err = newProductDoc(&p)
		if err != nil {
			return err
		}

		if _, err := r.s.col(colProducts).ReplaceOne(sc, byID(id), doc); err != nil {
			return fmt.Errorf("error updating product: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return r.view(ctx, doc)
}

func (r productRepo) Delete(ctx context.Context, id int64) error {
	ctx, span := r.s.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	err := r.s.inTx(ctx, func(sc mongo.SessionContext) error {
		found, err := exists(sc, r.s.col(colProducts), byID(id))
		if err != nil {
			return err
		}
		if !found {
			return repository.ErrProductNotFound
		}

		ordered, err := exists(sc, r.s.col(colOrders), bson.D{{Key: "items.product_id", Value: id}})
		if err != nil {
			return err
		}
		if ordered {
			return repository.ErrReferencedByOrders
		}

		if _, err := r.s.col(colProducts).DeleteOne(sc, byID(id)); err != nil {
			return fmt.Errorf("error deleting product: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
	}

	return err
}

func (r productRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var docs []categoryDoc
	if err := findAll(ctx, r.s.col(colCategories), bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}), &docs); err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, domain.Category{ID: d.ID, Name: d.Name, Description: d.Description})
	}
	return categories, nil
}

type customerRepo struct{ s *Store }

func (r customerRepo) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	ctx, span := r.s.tracer.Start(ctx, "CustomerRepository.Create")
	defer span.End()

	id, err := r.s.nextID(ctx, colCustomers)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	doc := customerDoc{
		ID:         id,
		FirstName:  customer.FirstName,
		LastName:   customer.LastName,
		Email:      customer.Email,
		Phone:      customer.Phone,
		Address:    customer.Address,
		Hostel:     customer.Hostel,
		RoomNumber: customer.RoomNumber,
		CreatedAt:  now(),
	}

	if _, err := r.s.col(colCustomers).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrCustomerAlreadyExists
		}

		span.RecordError(err)
		return nil, fmt.Errorf("error inserting customer: %w", err)
	}

	created := doc.toDomain()
	return &created, nil
}

func (r customerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var doc customerDoc
	if err := findOne(ctx, r.s.col(colCustomers), byID(id), &doc, repository.ErrCustomerNotFound); err != nil {
		return nil, err
	}

	c := doc.toDomain()
	return &c, nil
}

func (r customerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	var docs []customerDoc
	opts := options.Find().SetSort(bson.D{{Key: "first_name", Value: 1}, {Key: "last_name", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, r.s.col(colCustomers), bson.D{}, opts, &docs); err != nil {
		return nil, err
	}

	customers := make([]domain.Customer, 0, len(docs))
	for _, d := range docs {
		customers = append(customers, d.toDomain())
	}
	return customers, nil
}

type employeeRepo struct{ s *Store }

func (r employeeRepo) Create(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	id, err := r.s.nextID(ctx, colEmployees)
	if err != nil {
		return nil, err
	}

	doc := employeeDoc{
		ID:            id,
		FirstName:     employee.FirstName,
		LastName:      employee.LastName,
		Role:          string(employee.Role),
		ContactNumber: employee.ContactNumber,
		Email:         employee.Email,
	}
	if _, err := r.s.col(colEmployees).InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("error inserting employee: %w", err)
	}

	created := doc.toDomain()
	return &created, nil
}

func (r employeeRepo) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	var doc employeeDoc
	if err := findOne(ctx, r.s.col(colEmployees), byID(id), &doc, repository.ErrEmployeeNotFound); err != nil {
		return nil, err
	}

	e := doc.toDomain()
	return &e, nil
}

func (r employeeRepo) ListByRoles(ctx context.Context, roles []domain.EmployeeRole) ([]domain.Employee, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}

	var docs []employeeDoc
	opts := options.Find().SetSort(bson.D{{Key: "first_name", Value: 1}, {Key: "last_name", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, r.s.col(colEmployees), bson.D{{Key: "role", Value: bson.D{{Key: "$in", Value: names}}}}, opts, &docs); err != nil {
		return nil, err
	}

	employees := make([]domain.Employee, 0, len(docs))
	for _, d := range docs {
		employees = append(employees, d.toDomain())
	}
	return employees, nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	id, err := r.s.nextID(ctx, colUsers)
	if err != nil {
		return nil, err
	}

	doc := userDoc{
		ID:           id,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		CreatedAt:    now(),
	}
	if _, err := r.s.col(colUsers).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	created := doc.toDomain()
	return &created, nil
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var doc userDoc
	if err := findOne(ctx, r.s.col(colUsers), bson.D{{Key: "username", Value: username}}, &doc, repository.ErrUserNotFound); err != nil {
		return nil, err
	}

	u := doc.toDomain()
	return &u, nil
}

func (r userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var doc userDoc
	if err := findOne(ctx, r.s.col(colUsers), byID(id), &doc, repository.ErrUserNotFound); err != nil {
		return nil, err
	}

	u := doc.toDomain()
	return &u, nil
}
