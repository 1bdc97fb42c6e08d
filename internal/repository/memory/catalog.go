package memory

import (
	"context"
	"sort"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
)

type shopRepo struct{ s *Store }

func (r shopRepo) Create(_ context.Context, shop *domain.Shop) (*domain.Shop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.seq.shop++
	created := *shop
	created.ID = r.s.seq.shop
	r.s.shops[created.ID] = created

	return &created, nil
}

func (r shopRepo) GetByID(_ context.Context, id int64) (*domain.Shop, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	shop, ok := r.s.shops[id]
	if !ok {
		return nil, repository.ErrShopNotFound
	}
	return &shop, nil
}

func (r shopRepo) List(_ context.Context) ([]domain.Shop, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	shops := make([]domain.Shop, 0, len(r.s.shops))
	for _, shop := range r.s.shops {
		shops = append(shops, shop)
	}
	sort.Slice(shops, func(i, j int) bool {
		if shops[i].Name != shops[j].Name {
			return shops[i].Name < shops[j].Name
		}
		return shops[i].ID < shops[j].ID
	})

	return shops, nil
}

func (r shopRepo) Update(_ context.Context, id int64, input *domain.UpdateShopInput) (*domain.Shop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	shop, ok := r.s.shops[id]
	if !ok {
		return nil, repository.ErrShopNotFound
	}

	input.Apply(&shop)
	r.s.shops[id] = shop

	return &shop, nil
}

func (r shopRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.shops[id]; !ok {
		return repository.ErrShopNotFound
	}

	var owned []int64
	for pid, p := range r.s.products {
		if p.ShopID != id {
			continue
		}
		if r.s.productOrdered(pid) {
			return repository.ErrReferencedByOrders
		}
		owned = append(owned, pid)
	}

	for _, pid := range owned {
		delete(r.s.products, pid)
	}
	delete(r.s.shops, id)

	return nil
}

type productRepo struct{ s *Store }

// view fills the joined shop and category names. Callers hold s.mu.
func (r productRepo) view(p domain.Product) domain.Product {
	p.ShopName = r.s.shops[p.ShopID].Name
	p.CategoryName = ""
	if p.CategoryID != nil {
		p.CategoryName = r.s.categories[*p.CategoryID].Name
	}
	return p
}

func (r productRepo) checkRefs(p *domain.Product) error {
	if _, ok := r.s.shops[p.ShopID]; !ok {
		return repository.ErrShopNotFound
	}
	if p.CategoryID != nil {
		if _, ok := r.s.categories[*p.CategoryID]; !ok {
			return repository.ErrCategoryNotFound
		}
	}
	return nil
}

func (r productRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkRefs(product); err != nil {
		return nil, err
	}

	r.s.seq.product++
	created := *product
	created.ID = r.s.seq.product
	created.Price = domain.Money(created.Price)
	if created.CategoryID != nil {
		created.CategoryID = ptr(*created.CategoryID)
	}
	r.s.products[created.ID] = created

	view := r.view(created)
	return &view, nil
}

func (r productRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}

	view := r.view(p)
	return &view, nil
}

func (r productRepo) List(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := make([]domain.Product, 0)
	for _, p := range r.s.products {
		if filter.ShopID != nil && p.ShopID != *filter.ShopID {
			continue
		}
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		products = append(products, r.view(p))
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	return products, nil
}

func (r productRepo) Update(_ context.Context, id int64, input *domain.UpdateProductInput) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}

	input.Apply(&p)
	if err := r.checkRefs(&p); err != nil {
		return nil, err
	}
	p.Price = domain.Money(p.Price)
	r.s.products[id] = p

	view := r.view(p)
	return &view, nil
}

func (r productRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	if r.s.productOrdered(id) {
		return repository.ErrReferencedByOrders
	}

	delete(r.s.products, id)
	return nil
}

func (r productRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	categories := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

	return categories, nil
}

type customerRepo struct{ s *Store }

func (r customerRepo) Create(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if customer.Email != nil {
		for _, c := range r.s.customers {
			if c.Email != nil && *c.Email == *customer.Email {
				return nil, repository.ErrCustomerAlreadyExists
			}
		}
	}

	r.s.seq.customer++
	created := *customer
	created.ID = r.s.seq.customer
	created.CreatedAt = timeNow()
	if created.Email != nil {
		created.Email = ptr(*created.Email)
	}
	r.s.customers[created.ID] = created

	return &created, nil
}

func (r customerRepo) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return &c, nil
}

func (r customerRepo) List(_ context.Context) ([]domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(r.s.customers))
	for _, c := range r.s.customers {
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool {
		a, b := customers[i], customers[j]
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.ID < b.ID
	})

	return customers, nil
}

type employeeRepo struct{ s *Store }

func (r employeeRepo) Create(_ context.Context, employee *domain.Employee) (*domain.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.seq.employee++
	created := *employee
	created.ID = r.s.seq.employee
	r.s.employees[created.ID] = created

	return &created, nil
}

func (r employeeRepo) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.employees[id]
	if !ok {
		return nil, repository.ErrEmployeeNotFound
	}
	return &e, nil
}

func (r employeeRepo) ListByRoles(_ context.Context, roles []domain.EmployeeRole) ([]domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[domain.EmployeeRole]struct{}, len(roles))
	for _, role := range roles {
		wanted[role] = struct{}{}
	}

	employees := make([]domain.Employee, 0)
	for _, e := range r.s.employees {
		if _, ok := wanted[e.Role]; ok {
			employees = append(employees, e)
		}
	}
	sort.Slice(employees, func(i, j int) bool {
		a, b := employees[i], employees[j]
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.ID < b.ID
	})

	return employees, nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username {
			return nil, repository.ErrUserAlreadyExists
		}
	}

	r.s.seq.user++
	created := *user
	created.ID = r.s.seq.user
	created.CreatedAt = timeNow()
	r.s.users[created.ID] = created

	return &created, nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}
