package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/gymbro/gymbro-api/internal/domain/entity"
	repo "github.com/gymbro/gymbro-api/internal/domain/repository"
	"github.com/gymbro/gymbro-api/pkg/media"
)

var ErrProductNotFound = errors.New("product not found")

// ProductService owns product CRUD and keeps the remote image variants
// consistent with the document state. Image-mutating operations on the same
// product are serialized through a per-id lock; without it two concurrent
// replaces could each destroy assets the other just wrote.
type ProductService struct {
	Repo    repo.ProductRepository
	Media   *media.Pipeline
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string

	locks sync.Map // product id -> *sync.Mutex
}

func NewProductService(r repo.ProductRepository, pipeline *media.Pipeline, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *ProductService {
	return &ProductService{Repo: r, Media: pipeline, Logger: logger, ES: es, ESIndex: esIndex}
}

func (s *ProductService) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type ProductInput struct {
	Title       string
	Description string
	Category    string
	Gender      string
	Price       float64
}

// Create uploads both variants first and only then commits the document, so
// a committed product always carries a complete image set. If the insert
// fails the fresh uploads are destroyed best-effort.
func (s *ProductService) Create(ctx context.Context, in ProductInput, image []byte, contentType string) (*entity.Product, error) {
	set, err := s.Media.Upload(ctx, image, contentType)
	if err != nil {
		return nil, err
	}

	p := &entity.Product{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Gender:      in.Gender,
		Price:       in.Price,
		Images:      set,
	}
	if err := s.Repo.Create(p); err != nil {
		s.Media.Remove(ctx, set)
		return nil, err
	}

	s.indexProduct(ctx, p)
	return p, nil
}

// Get loads one product by id.
func (s *ProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// Update applies field changes and, when image is non-nil, replaces the
// remote variants: new uploads first, old destroys after, destroy failures
// swallowed. The document still commits with the new asset references.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput, image []byte, contentType string) (*entity.Product, error) {
	unlock := s.lock(id)
	defer unlock()

	p, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	p.Title = in.Title
	p.Description = in.Description
	p.Category = in.Category
	p.Gender = in.Gender
	p.Price = in.Price

	if image != nil {
		set, err := s.Media.Replace(ctx, p.Images, image, contentType)
		if err != nil {
			return nil, err
		}
		p.Images = set
	}

	if err := s.Repo.Update(p); err != nil {
		return nil, err
	}

	s.indexProduct(ctx, p)
	return p, nil
}

// Delete removes the document first, then issues a destroy for both remote
// assets regardless of either outcome.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	p, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if err := s.Repo.Delete(id); err != nil {
		return err
	}

	s.Media.Remove(ctx, p.Images)
	s.deindexProduct(ctx, id)
	return nil
}

// Search lists products by category and gender. When no category is given
// every category except accessories is searched; accessories only show up
// when asked for explicitly.
func (s *ProductService) Search(ctx context.Context, categories, genders []string, limit int) ([]entity.Product, error) {
	if len(categories) == 0 {
		for _, c := range entity.Categories() {
			if c != entity.CategoryAccessories {
				categories = append(categories, c)
			}
		}
	}
	if len(genders) == 0 {
		genders = entity.Genders()
	}
	if limit <= 0 {
		limit = 1000
	}
	return s.Repo.Search(repo.ProductFilter{Categories: categories, Genders: genders, Limit: limit})
}

// SearchByTitle serves the search bar: a title prefix query against
// Elasticsearch, capped at five hits. Without a configured client it
// returns an empty result instead of failing.
func (s *ProductService) SearchByTitle(ctx context.Context, title string) ([]entity.Product, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []entity.Product{}, nil
	}

	query := map[string]any{
		"query": map[string]any{
			"match_phrase_prefix": map[string]any{
				"title": title,
			},
		},
		"size": 5,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source entity.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Product, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

// indexProduct mirrors the document into Elasticsearch, best-effort.
func (s *ProductService) indexProduct(ctx context.Context, p *entity.Product) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	b, _ := json.Marshal(p)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("product_id", p.ID).Warn("es index response error")
	}
}

func (s *ProductService) deindexProduct(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}
