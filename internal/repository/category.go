package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/filegate/filegate/internal/model"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category already exists")
)

type CategoryRepository interface {
	Create(name string, ownerID int64) (*model.Category, error)
	ByID(id string) (*model.Category, error)
	All() ([]*model.Category, error)
	Delete(id string) error
	AddFiles(categoryID string, files []model.File) (int, error)
	Timer(id string) (*int64, error)
	SetTimer(id string, seconds *int64) error
}

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) *categoryRepository {
	return &categoryRepository{db: db}
}

// newCategoryID returns an 8-char opaque token. UUID collisions at this
// length are negligible for the store sizes involved; the name UNIQUE
// constraint is the real duplicate guard.
func newCategoryID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

func (r *categoryRepository) Create(name string, ownerID int64) (*model.Category, error) {
	cat := &model.Category{
		ID:        newCategoryID(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	query := `INSERT INTO categories (id, name, owner_id, timer, created_at)
	          VALUES ($1, $2, $3, NULL, $4)
	          ON CONFLICT DO NOTHING`

	res, err := r.db.Exec(query, cat.ID, cat.Name, cat.OwnerID, cat.CreatedAt)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrDuplicateCategory
	}

	return cat, nil
}

func (r *categoryRepository) ByID(id string) (*model.Category, error) {
	cat := &model.Category{}
	query := `SELECT id, name, owner_id, timer, created_at FROM categories WHERE id = $1`

	err := r.db.Get(cat, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}

	query = `SELECT file_id, category_id, seq, file_name, file_size, file_kind, caption, uploaded_at
	         FROM files WHERE category_id = $1 ORDER BY seq`
	err = r.db.Select(&cat.Files, query, id)
	if err != nil {
		return nil, err
	}

	return cat, nil
}

func (r *categoryRepository) All() ([]*model.Category, error) {
	var cats []*model.Category
	query := `SELECT id, name, owner_id, timer, created_at FROM categories ORDER BY created_at`

	err := r.db.Select(&cats, query)
	if err != nil {
		return nil, err
	}

	return cats, nil
}

func (r *categoryRepository) Delete(id string) error {
	// Files go with the category via ON DELETE CASCADE.
	res, err := r.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// AddFiles appends files to a category in the given order and returns how
// many were actually inserted. A file_id already present anywhere in the
// store is skipped silently rather than treated as an error.
func (r *categoryRepository) AddFiles(categoryID string, files []model.File) (int, error) {
	var maxSeq sql.NullInt64
	err := r.db.Get(&maxSeq, `SELECT MAX(seq) FROM files WHERE category_id = $1`, categoryID)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	seq := maxSeq.Int64

	query := `INSERT INTO files (file_id, category_id, seq, file_name, file_size, file_kind, caption, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (file_id) DO NOTHING`

	inserted := 0
	now := time.Now().UTC()
	for _, f := range files {
		seq++
		res, err := r.db.Exec(query, f.FileID, categoryID, seq, f.FileName, f.FileSize, f.FileKind, f.Caption, now)
		if err != nil {
			return inserted, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		if n == 0 {
			seq-- // duplicate, slot not consumed
			continue
		}
		inserted++
	}

	return inserted, nil
}

func (r *categoryRepository) Timer(id string) (*int64, error) {
	var timer *int64
	err := r.db.Get(&timer, `SELECT timer FROM categories WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return timer, nil
}

func (r *categoryRepository) SetTimer(id string, seconds *int64) error {
	res, err := r.db.Exec(`UPDATE categories SET timer = $1 WHERE id = $2`, seconds, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
