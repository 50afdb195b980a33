// Package sqlstore keeps documents as JSON rows in a relational database through GORM.
package sqlstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foreverhome/internal/store"
)

// documentRow is one document of one collection.
type documentRow struct {
	ID         string    `gorm:"type:char(36);primaryKey"`
	Collection string    `gorm:"size:64;not null;index"`
	Body       string    `gorm:"type:json;not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (documentRow) TableName() string { return "documents" }

// BeforeCreate sets UUID before creating the record.
func (r *documentRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Store is a GORM-backed document store.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New builds a store on an open GORM connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the documents table.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&documentRow{})
}

// Collection returns the named collection.
func (s *Store) Collection(name string) store.Collection {
	return &collection{db: s.db, name: name}
}

// Ping checks the underlying connection pool.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type collection struct {
	db   *gorm.DB
	name string
}

func (c *collection) InsertOne(ctx context.Context, doc store.Document) (*store.InsertResult, error) {
	body, err := encodeBody(doc)
	if err != nil {
		return nil, err
	}
	row := &documentRow{Collection: c.name, Body: body}
	if err := c.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return &store.InsertResult{Acknowledged: true, InsertedID: row.ID}, nil
}

func (c *collection) FindOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	q, err := c.scope(c.db.WithContext(ctx), filter)
	if err != nil {
		return nil, err
	}
	var row documentRow
	if err := q.Order("created_at, id").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeRow(&row)
}

func (c *collection) Find(ctx context.Context, filter store.Filter) ([]store.Document, error) {
	q, err := c.scope(c.db.WithContext(ctx), filter)
	if err != nil {
		return nil, err
	}
	var rows []documentRow
	if err := q.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]store.Document, 0, len(rows))
	for i := range rows {
		doc, err := decodeRow(&rows[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// UpdateOne locks the first matching row and merges patch into its body.
func (c *collection) UpdateOne(ctx context.Context, filter store.Filter, patch store.Document) (*store.UpdateResult, error) {
	res := &store.UpdateResult{Acknowledged: true}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := c.scope(tx.Clauses(clause.Locking{Strength: "UPDATE"}), filter)
		if err != nil {
			return err
		}
		var row documentRow
		if err := q.Order("created_at, id").First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		res.MatchedCount = 1

		doc, err := decodeRow(&row)
		if err != nil {
			return err
		}
		changed, err := merge(doc, patch)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		body, err := encodeBody(doc)
		if err != nil {
			return err
		}
		if err := tx.Model(&documentRow{}).Where("id = ?", row.ID).Update("body", body).Error; err != nil {
			return err
		}
		res.ModifiedCount = 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *collection) scope(q *gorm.DB, filter store.Filter) (*gorm.DB, error) {
	q = q.Where("collection = ?", c.name)
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == store.IDField {
			q = q.Where("id = ?", scalarString(filter[k]))
			continue
		}
		path, err := jsonPath(k)
		if err != nil {
			return nil, err
		}
		q = q.Where("JSON_UNQUOTE(JSON_EXTRACT(body, ?)) = ?", path, scalarString(filter[k]))
	}
	return q, nil
}

// jsonPath quotes a top-level field name as a MySQL JSON path.
func jsonPath(field string) (string, error) {
	if field == "" || strings.ContainsAny(field, `"\`) {
		return "", fmt.Errorf("unsupported filter field %q", field)
	}
	return `$."` + field + `"`, nil
}

// scalarString renders a filter value the way JSON_UNQUOTE renders stored scalars.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return "null"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// merge applies patch to doc and reports whether any field changed.
func merge(doc, patch store.Document) (bool, error) {
	changed := false
	for k, v := range patch {
		if k == store.IDField {
			continue
		}
		old, ok := doc[k]
		if ok {
			same, err := jsonEqual(old, v)
			if err != nil {
				return false, err
			}
			if same {
				continue
			}
		}
		doc[k] = v
		changed = true
	}
	return changed, nil
}

func jsonEqual(a, b any) (bool, error) {
	ab, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ab, bb), nil
}

func encodeBody(doc store.Document) (string, error) {
	body := make(store.Document, len(doc))
	for k, v := range doc {
		if k != store.IDField {
			body[k] = v
		}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}

func decodeRow(row *documentRow) (store.Document, error) {
	doc := store.Document{}
	if err := json.Unmarshal([]byte(row.Body), &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", row.ID, err)
	}
	doc[store.IDField] = row.ID
	return doc, nil
}
