package repository

import "github.com/gymbro/gymbro-api/internal/domain/entity"

// ProductFilter narrows a catalog search. Empty slices mean the caller did
// not constrain that dimension; the service layer decides the defaults.
type ProductFilter struct {
	Categories []string
	Genders    []string
	Limit      int
}

// ProductRepository defines the persistence surface for product entities.
type ProductRepository interface {
	Create(p *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	Update(p *entity.Product) error
	Delete(id string) error
	Search(f ProductFilter) ([]entity.Product, error)
}
