package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/eventsync/internal/entities"
)

type fakeEntryStore struct {
	rows      []*entities.Entry
	nextID    uint
	writes    int
	failTitle string
}

func (s *fakeEntryStore) add(e entities.Entry) *entities.Entry {
	s.nextID++
	e.ID = s.nextID
	row := e
	s.rows = append(s.rows, &row)
	return &row
}

func (s *fakeEntryStore) byID(id uint) *entities.Entry {
	for _, r := range s.rows {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *fakeEntryStore) FindByIdentifier(_ context.Context, identifier string) (*entities.Entry, error) {
	for _, r := range s.rows {
		if r.IdentifierValue() == identifier {
			copied := *r
			return &copied, nil
		}
	}
	return nil, entities.ErrNotFound
}

func (s *fakeEntryStore) FindMatch(_ context.Context, title string, start, end *time.Time) (*entities.Entry, error) {
	for _, r := range s.rows {
		if r.DeletedAt.Valid || r.Title != title {
			continue
		}
		if sameDay(r.Start, start) && sameDay(r.End, end) {
			copied := *r
			return &copied, nil
		}
	}
	return nil, entities.ErrNotFound
}

func sameDay(stored, incoming *time.Time) bool {
	if incoming == nil || stored == nil {
		return incoming == nil && stored == nil
	}
	return entities.StartOfDay(*stored).Equal(entities.StartOfDay(*incoming))
}

func (s *fakeEntryStore) Create(_ context.Context, entry *entities.Entry) error {
	if s.failTitle != "" && entry.Title == s.failTitle {
		return errors.New("insert failed")
	}
	s.writes++
	s.nextID++
	entry.ID = s.nextID
	row := *entry
	s.rows = append(s.rows, &row)
	return nil
}

func (s *fakeEntryStore) Update(_ context.Context, id uint, columns map[string]any) error {
	row := s.byID(id)
	if row == nil {
		return entities.ErrNotFound
	}
	s.writes++
	for k, v := range columns {
		if err := applyColumn(row, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeEntryStore) ListWithIdentifier(_ context.Context, source string) ([]entities.Entry, error) {
	var out []entities.Entry
	for _, r := range s.rows {
		if r.Source == source && r.Identifier != nil && !r.IsInternal && !r.DeletedAt.Valid {
			out = append(out, *r)
		}
	}
	return out, nil
}

func applyColumn(e *entities.Entry, column string, value any) error {
	str := func() string { s, _ := value.(string); return s }
	switch column {
	case "title":
		e.Title = str()
	case "slug":
		e.Slug = str()
	case "starts_at":
		e.Start, _ = value.(*time.Time)
	case "ends_at":
		e.End, _ = value.(*time.Time)
	case "all_day":
		e.AllDay, _ = value.(bool)
	case "description":
		e.Description = str()
	case "place":
		e.Place = str()
	case "url":
		e.URL = str()
	case "country_id":
		e.CountryID, _ = value.(*uint)
	case "institution":
		e.Institution = str()
	case "contact":
		e.Contact = str()
	case "email":
		e.Email = str()
	case "theme":
		e.Theme = str()
	case "target":
		e.Target = str()
	case "format":
		e.Format = str()
	case "tags":
		e.Tags = str()
	case "fee":
		e.Fee = str()
	case "meta_title":
		e.MetaTitle = str()
	case "meta_description":
		e.MetaDescription = str()
	case "meta_keywords":
		e.MetaKeywords = str()
	case "source":
		e.Source = str()
	case "deleted_at":
		if value == nil {
			e.DeletedAt = gorm.DeletedAt{}
		}
	case "updated_at":
		e.UpdatedAt, _ = value.(time.Time)
	default:
		return fmt.Errorf("unknown column %q", column)
	}
	return nil
}

type blobKey struct {
	entryID uint
	field   string
}

type fakeBlobs struct {
	files   map[blobKey]string
	deletes int
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{files: make(map[blobKey]string)}
}

func (b *fakeBlobs) Exists(_ context.Context, entryID uint, field string) (bool, error) {
	_, ok := b.files[blobKey{entryID, field}]
	return ok, nil
}

func (b *fakeBlobs) Store(_ context.Context, entryID uint, field, fileName, _ string, _ []byte) error {
	b.files[blobKey{entryID, field}] = fileName
	return nil
}

func (b *fakeBlobs) Delete(_ context.Context, entryID uint, field string) error {
	b.deletes++
	delete(b.files, blobKey{entryID, field})
	return nil
}

type fakeImages struct {
	fetched []string
	err     error
}

func (f *fakeImages) Fetch(_ context.Context, url string) ([]byte, string, error) {
	f.fetched = append(f.fetched, url)
	if f.err != nil {
		return nil, "", f.err
	}
	return []byte("image"), "image/jpeg", nil
}

type fakeCategories struct {
	links map[uint][]uint
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{links: make(map[uint][]uint)}
}

func (c *fakeCategories) Attach(_ context.Context, entryID, categoryID uint) (bool, error) {
	for _, id := range c.links[entryID] {
		if id == categoryID {
			return false, nil
		}
	}
	c.links[entryID] = append(c.links[entryID], categoryID)
	return true, nil
}

func (c *fakeCategories) HasAny(_ context.Context, entryID uint) (bool, error) {
	return len(c.links[entryID]) > 0, nil
}
