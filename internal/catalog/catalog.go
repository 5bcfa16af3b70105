// Package catalog stores compiled specs in a SQLite database so that
// downstream tooling can query models, fields, screens and resolved themes
// without re-parsing the sources.
package catalog

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/btouchard/seed/internal/compiler/ast"
	"github.com/btouchard/seed/internal/compiler/theme"
)

// ErrNotFound is returned when no spec has the requested id.
var ErrNotFound = stderrors.New("spec not found")

const lineageSep = " -> "

// Catalog is a handle on the spec database. It is safe for concurrent use.
type Catalog struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the SQLite database at dsn and migrates
// its schema. Use ":memory:" for a throwaway catalog.
func Open(dsn string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", dsn, err)
	}
	if dsn == ":memory:" {
		// every pooled connection would get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(
		&SpecRecord{},
		&ModelRecord{},
		&FieldRecord{},
		&ScreenRecord{},
		&ThemeRecord{},
		&ThemeTokenRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return &Catalog{db: db, logger: logger}, nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save stores spec, compiled from entry, and returns its record id.
func (c *Catalog) Save(ctx context.Context, entry string, spec *ast.Spec) (string, error) {
	rec, err := newSpecRecord(entry, spec)
	if err != nil {
		return "", err
	}
	if err := c.db.WithContext(ctx).Create(rec).Error; err != nil {
		return "", fmt.Errorf("failed to save spec %s: %w", entry, err)
	}
	c.logger.Debug("spec saved to catalog",
		zap.String("id", rec.ID),
		zap.String("entry", entry),
		zap.Int("models", len(rec.Models)),
		zap.Int("themes", len(rec.Themes)))
	return rec.ID, nil
}

// Get loads a stored spec with all its children.
func (c *Catalog) Get(ctx context.Context, id string) (*SpecRecord, error) {
	var rec SpecRecord
	err := c.db.WithContext(ctx).
		Preload("Models", byPosition).
		Preload("Models.Fields", byPosition).
		Preload("Screens", byPosition).
		Preload("Themes", byPosition).
		Preload("Themes.Tokens", func(db *gorm.DB) *gorm.DB { return db.Order("path") }).
		First(&rec, "id = ?", id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns every stored spec, newest first, without children.
func (c *Catalog) List(ctx context.Context) ([]SpecRecord, error) {
	var recs []SpecRecord
	err := c.db.WithContext(ctx).Order("created_at desc").Find(&recs).Error
	return recs, err
}

// Latest returns the id of the most recent spec saved for entry.
func (c *Catalog) Latest(ctx context.Context, entry string) (string, error) {
	var rec SpecRecord
	err := c.db.WithContext(ctx).Where("entry = ?", entry).Order("created_at desc").First(&rec).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, entry)
	}
	return rec.ID, err
}

// ModelsNamed returns every stored model called name, fields included.
func (c *Catalog) ModelsNamed(ctx context.Context, name string) ([]ModelRecord, error) {
	var recs []ModelRecord
	err := c.db.WithContext(ctx).
		Preload("Fields", byPosition).
		Where("name = ?", name).
		Find(&recs).Error
	return recs, err
}

// ThemeToken returns the resolved value of a dotted token path in a stored
// theme.
func (c *Catalog) ThemeToken(ctx context.Context, specID, themeName, path string) (string, bool, error) {
	var tok ThemeTokenRecord
	err := c.db.WithContext(ctx).
		Joins("JOIN themes ON themes.id = theme_tokens.theme_id").
		Where("themes.spec_id = ? AND themes.name = ? AND themes.active = ? AND theme_tokens.path = ?", specID, themeName, false, path).
		First(&tok).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return tok.Value, true, nil
}

// Delete removes a stored spec and its children.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&SpecRecord{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		themes := tx.Model(&ThemeRecord{}).Select("id").Where("spec_id = ?", id)
		if err := tx.Where("theme_id IN (?)", themes).Delete(&ThemeTokenRecord{}).Error; err != nil {
			return err
		}
		models := tx.Model(&ModelRecord{}).Select("id").Where("spec_id = ?", id)
		if err := tx.Where("model_id IN (?)", models).Delete(&FieldRecord{}).Error; err != nil {
			return err
		}
		for _, child := range []any{&ThemeRecord{}, &ModelRecord{}, &ScreenRecord{}} {
			if err := tx.Where("spec_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func newSpecRecord(entry string, spec *ast.Spec) (*SpecRecord, error) {
	rec := &SpecRecord{
		Entry: entry,
		Files: strings.Join(spec.Files, "\n"),
	}
	if spec.App != nil {
		rec.App = spec.App.Name
		rec.Title = spec.App.Title
		rec.Theme = spec.App.Theme
	}

	for i, m := range spec.Models {
		mr := ModelRecord{Name: m.Name, Position: i}
		for j, f := range m.Fields {
			fr := FieldRecord{
				Name:        f.Name,
				Type:        f.Type,
				Default:     f.Default,
				IsTitle:     f.IsTitle,
				IsReference: f.IsReference,
				Position:    j,
			}
			if len(f.Constraints) > 0 {
				data, err := sonic.ConfigStd.Marshal(f.Constraints)
				if err != nil {
					return nil, fmt.Errorf("failed to encode constraints of %s.%s: %w", m.Name, f.Name, err)
				}
				fr.Constraints = string(data)
			}
			mr.Fields = append(mr.Fields, fr)
		}
		rec.Models = append(rec.Models, mr)
	}

	for i, s := range spec.Screens {
		rec.Screens = append(rec.Screens, ScreenRecord{Name: s.Name, Model: s.Model, Position: i})
	}

	for i, t := range spec.Themes {
		rec.Themes = append(rec.Themes, newThemeRecord(t, false, i))
	}
	if spec.ActiveTheme != nil {
		rec.Themes = append(rec.Themes, newThemeRecord(spec.ActiveTheme, true, len(spec.Themes)))
	}
	return rec, nil
}

func newThemeRecord(t *ast.Theme, active bool, pos int) ThemeRecord {
	tr := ThemeRecord{
		Name:     t.Name,
		Title:    t.Title,
		Lineage:  strings.Join(t.Lineage, lineageSep),
		Active:   active,
		Position: pos,
	}
	flat := t.Properties.Flatten()
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		tr.Tokens = append(tr.Tokens, ThemeTokenRecord{Path: p, Value: flat[p]})
	}
	return tr
}

// Spec rebuilds the stored spec. Positions are not stored and stay zero.
func (r *SpecRecord) Spec() (*ast.Spec, error) {
	spec := ast.NewSpec()
	if r.Files != "" {
		spec.Files = strings.Split(r.Files, "\n")
	}
	if r.App != "" {
		spec.App = &ast.App{Name: r.App, Title: r.Title, Theme: r.Theme}
	}

	for _, mr := range r.Models {
		m := &ast.Model{Name: mr.Name, Fields: []*ast.Field{}}
		for _, fr := range mr.Fields {
			f := &ast.Field{
				Name:        fr.Name,
				Type:        fr.Type,
				Default:     fr.Default,
				IsTitle:     fr.IsTitle,
				IsReference: fr.IsReference,
			}
			if fr.Constraints != "" {
				if err := sonic.ConfigStd.UnmarshalFromString(fr.Constraints, &f.Constraints); err != nil {
					return nil, fmt.Errorf("failed to decode constraints of %s.%s: %w", mr.Name, fr.Name, err)
				}
			}
			m.Fields = append(m.Fields, f)
		}
		spec.Models = append(spec.Models, m)
	}

	for _, sr := range r.Screens {
		spec.Screens = append(spec.Screens, &ast.Screen{Name: sr.Name, Model: sr.Model})
	}

	for _, tr := range r.Themes {
		tokens := make(map[string]string, len(tr.Tokens))
		for _, tok := range tr.Tokens {
			tokens[tok.Path] = tok.Value
		}
		props, err := theme.ApplyOverrides(ast.Tree{}, tokens)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild theme %s: %w", tr.Name, err)
		}
		t := &ast.Theme{Name: tr.Name, Title: tr.Title, Properties: props}
		if tr.Lineage != "" {
			t.Lineage = strings.Split(tr.Lineage, lineageSep)
		}
		if tr.Active {
			spec.ActiveTheme = t
			continue
		}
		spec.Themes = append(spec.Themes, t)
	}
	return spec, nil
}
