// Package catalog describes the administrative tables the lifecycle service may touch: their
// primary key, required and computed fields, attachment fields and, for bookings, how a booking
// links to its sacrament document.
package catalog

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"go-parish-admin/internal/model"
)

type SacramentType string

const (
	Wedding    SacramentType = "Wedding"
	Baptism    SacramentType = "Baptism"
	Burial     SacramentType = "Burial"
	Confession SacramentType = "Confession"
	Anointing  SacramentType = "Anointing"
	Communion  SacramentType = "Communion"
)

// SacramentLink names the document table owned by a booking and the booking column that points
// at it.
type SacramentLink struct {
	Table      string
	ForeignKey string
}

type SacramentCascade struct {
	TypeField string
	Links     map[SacramentType]SacramentLink
}

type AttachmentField struct {
	Field  string
	Bucket string
}

type TableDescriptor struct {
	Name           string
	PrimaryKey     string
	RequiredFields []string
	ComputedFields []string
	Attachments    []AttachmentField
	Cascade        *SacramentCascade
}

// URLParser maps a public object URL back to the bucket and path it was stored under.
type URLParser interface {
	ParsePublicURL(raw string) (model.StorageRef, bool)
}

type Registry struct {
	tables     map[string]TableDescriptor
	sacraments map[string]SacramentLink
}

func NewRegistry(descriptors ...TableDescriptor) *Registry {
	r := &Registry{
		tables:     make(map[string]TableDescriptor, len(descriptors)),
		sacraments: map[string]SacramentLink{},
	}

	for _, d := range descriptors {
		if d.PrimaryKey == "" {
			d.PrimaryKey = "id"
		}
		r.tables[d.Name] = d

		if d.Cascade == nil {
			continue
		}
		for sacrament, link := range d.Cascade.Links {
			r.sacraments[strings.ToLower(string(sacrament))] = link
		}
	}

	return r
}

func (r *Registry) Lookup(table string) (TableDescriptor, error) {
	d, ok := r.tables[strings.TrimSpace(table)]
	if !ok {
		return TableDescriptor{}, fmt.Errorf("%w: %q", model.ErrUnknownTable, table)
	}
	return d, nil
}

func (r *Registry) Tables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the document linkage for a sacrament type. Types without a dependent document
// (Confession, Anointing, Communion) report false.
func (r *Registry) Resolve(sacrament SacramentType) (SacramentLink, bool) {
	link, ok := r.sacraments[strings.ToLower(strings.TrimSpace(string(sacrament)))]
	return link, ok
}

// LinkedDocument reports the document row a record owns, if any. A foreign key that is set while
// the record's sacrament type has no linkage is an ErrCascadeResolution.
func (d TableDescriptor) LinkedDocument(fields map[string]any) (SacramentLink, int64, bool, error) {
	if d.Cascade == nil {
		return SacramentLink{}, 0, false, nil
	}

	sacrament, _ := fields[d.Cascade.TypeField].(string)
	if link, ok := d.Cascade.link(sacrament); ok {
		id, present, err := AsID(fields[link.ForeignKey])
		if err != nil {
			return SacramentLink{}, 0, false, fmt.Errorf("%w: %s.%s: %v", model.ErrCascadeResolution, d.Name, link.ForeignKey, err)
		}
		return link, id, present, nil
	}

	for _, fk := range d.Cascade.foreignKeys() {
		if _, present, _ := AsID(fields[fk]); present {
			return SacramentLink{}, 0, false, fmt.Errorf("%w: %s has %s set but sacrament %q has no document table",
				model.ErrCascadeResolution, d.Name, fk, sacrament)
		}
	}

	return SacramentLink{}, 0, false, nil
}

func (c *SacramentCascade) link(sacrament string) (SacramentLink, bool) {
	for t, link := range c.Links {
		if strings.EqualFold(string(t), strings.TrimSpace(sacrament)) {
			return link, true
		}
	}
	return SacramentLink{}, false
}

func (c *SacramentCascade) foreignKeys() []string {
	keys := make([]string, 0, len(c.Links))
	for _, link := range c.Links {
		keys = append(keys, link.ForeignKey)
	}
	sort.Strings(keys)
	return keys
}

// Clean drops the primary key and any computed or joined columns so the snapshot can be inserted
// back as a new row.
func (d TableDescriptor) Clean(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}

	delete(out, d.PrimaryKey)
	for _, computed := range d.ComputedFields {
		delete(out, computed)
	}

	return out
}

func (d TableDescriptor) ValidateRequired(fields map[string]any) error {
	missing := make([]string, 0)
	for _, name := range d.RequiredFields {
		v, ok := fields[name]
		if !ok || v == nil {
			missing = append(missing, name)
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s requires %s", model.ErrInvalidInput, d.Name, strings.Join(missing, ", "))
	}
	return nil
}

func (d TableDescriptor) Attachment(field string) (AttachmentField, bool) {
	for _, a := range d.Attachments {
		if a.Field == field {
			return a, true
		}
	}
	return AttachmentField{}, false
}

// StorageRefs lists the stored objects a snapshot owns. Only declared attachment fields are
// considered, only values the parser recognises as public object URLs, and only objects in
// the bucket the field is declared to upload into.
func (d TableDescriptor) StorageRefs(fields map[string]any, parser URLParser) []model.StorageRef {
	refs := make([]model.StorageRef, 0)
	seen := map[string]struct{}{}

	for _, a := range d.Attachments {
		raw, ok := fields[a.Field].(string)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}

		ref, ok := parser.ParsePublicURL(strings.TrimSpace(raw))
		if !ok {
			continue
		}
		if a.Bucket != "" && ref.Bucket != a.Bucket {
			slog.Warn("ignoring attachment outside its declared bucket",
				"table", d.Name, "field", a.Field, "bucket", ref.Bucket, "expected_bucket", a.Bucket)
			continue
		}

		key := ref.Bucket + "/" + ref.Path
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		refs = append(refs, ref)
	}

	return refs
}
