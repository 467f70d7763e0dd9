package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"go-parish-admin/internal/catalog"
	"go-parish-admin/internal/event"
	"go-parish-admin/internal/model"
	"go-parish-admin/internal/storage"
	"go-parish-admin/internal/tracing"
)

const (
	OperationSoftDelete = "soft_delete"
	OperationRestore    = "restore"
	OperationPurge      = "purge"
)

type LifecycleDeps struct {
	Registry    *catalog.Registry
	Records     RecordStore
	Trash       TrashStore
	Audit       *AuditService
	Objects     storage.ObjectStore
	Pending     PendingStore
	Bus         event.Bus
	StepTimeout time.Duration
}

// LifecycleService moves records between their table, the trash and oblivion.
//
// Every operation is a fixed sequence of steps. Cascaded document rows are always handled
// before the booking that owns them: staged before the booking on soft delete, restored before
// it on cascade restore, purged before it on purge.
type LifecycleService struct {
	registry *catalog.Registry
	records  RecordStore
	trash    TrashStore
	audit    *AuditService
	objects  storage.ObjectStore
	bus      event.Bus
	steps    *stepper
}

func NewLifecycleService(deps LifecycleDeps) *LifecycleService {
	bus := deps.Bus
	if bus == nil {
		bus = event.Nop{}
	}

	return &LifecycleService{
		registry: deps.Registry,
		records:  deps.Records,
		trash:    deps.Trash,
		audit:    deps.Audit,
		objects:  deps.Objects,
		bus:      bus,
		steps:    &stepper{pending: deps.Pending, bus: bus, timeout: deps.StepTimeout},
	}
}

func (s *LifecycleService) ListTrash(ctx context.Context, table string) ([]model.TrashEntry, error) {
	if table != "" {
		if _, err := s.registry.Lookup(table); err != nil {
			return nil, err
		}
	}
	return s.trash.List(ctx, table)
}

func (s *LifecycleService) GetTrashEntry(ctx context.Context, id string) (model.TrashEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.TrashEntry{}, fmt.Errorf("%w: %s", model.ErrTrashEntryNotFound, id)
	}
	return s.trash.FindByID(ctx, id)
}

// SoftDelete stages table#id in the trash and removes the row. A booking's linked sacrament
// document is staged and removed first and audited as CASCADE_DELETE.
func (s *LifecycleService) SoftDelete(ctx context.Context, table string, id int64, reason string, actor model.Actor) (entry model.TrashEntry, err error) {
	ctx, span := startSpan(ctx, "lifecycle.soft_delete", table, id)
	defer endSpan(span, &err)

	if _, err := s.registry.Lookup(table); err != nil {
		return model.TrashEntry{}, err
	}

	r := s.steps.begin(OperationSoftDelete, table, id, "", actor)
	return s.softDelete(ctx, r, table, id, reason, actor, model.AuditDelete)
}

func (s *LifecycleService) softDelete(ctx context.Context, r run, table string, id int64, reason string, actor model.Actor, action model.AuditAction) (model.TrashEntry, error) {
	descriptor, err := s.registry.Lookup(table)
	if err != nil {
		return model.TrashEntry{}, err
	}

	var current model.Record
	if err := r.read(ctx, "read", func(ctx context.Context) error {
		var readErr error
		current, readErr = s.records.Read(ctx, table, id)
		return readErr
	}); err != nil {
		return model.TrashEntry{}, err
	}

	link, docID, linked, err := descriptor.LinkedDocument(current.Fields)
	if err != nil {
		return model.TrashEntry{}, err
	}
	if linked {
		childReason := fmt.Sprintf("cascade from %s#%d", table, id)
		if reason != "" {
			childReason += ": " + reason
		}
		_, childErr := s.softDelete(ctx, r.scoped("cascade"), link.Table, docID, childReason, actor, model.AuditCascadeDelete)
		var partial *model.LifecycleError
		if errors.Is(childErr, model.ErrRecordNotFound) && !errors.As(childErr, &partial) {
			return model.TrashEntry{}, fmt.Errorf("%w: %s#%d points at missing %s#%d",
				model.ErrCascadeResolution, table, id, link.Table, docID)
		}
		if childErr != nil {
			return model.TrashEntry{}, childErr
		}
	}

	snapshot, err := json.Marshal(current.Fields)
	if err != nil {
		return model.TrashEntry{}, fmt.Errorf("encode snapshot of %s#%d: %w", table, id, err)
	}

	entry := model.TrashEntry{
		ID:             uuid.NewString(),
		OriginalTable:  table,
		RecordID:       id,
		RecordData:     string(snapshot),
		DeletedBy:      actor.DisplayName,
		DeletedByEmail: actor.Email,
		DeletedAt:      time.Now().UTC().Format(time.RFC3339Nano),
		DeletionReason: reason,
	}

	if err := r.write(ctx, "stash", func(ctx context.Context) error {
		return s.trash.Create(ctx, entry)
	}); err != nil {
		return model.TrashEntry{}, err
	}
	r.setTrashID(entry.ID)

	// A concurrent soft delete may already have removed the row; the entry stashed above
	// stays behind as a duplicate and the failure surfaces as a pending operation.
	if err := r.write(ctx, "delete", func(ctx context.Context) error {
		return s.records.Delete(ctx, table, id)
	}); err != nil {
		return model.TrashEntry{}, err
	}

	if err := r.write(ctx, "audit", func(ctx context.Context) error {
		_, auditErr := s.audit.Record(ctx, action, table, id, current.Fields, nil, actor)
		return auditErr
	}); err != nil {
		return model.TrashEntry{}, err
	}

	slog.Info("record trashed", "table", table, "record_id", id, "trash_id", entry.ID, "action", action, "actor", actor.Email)
	s.bus.Publish(event.New(event.TypeRecordTrashed, table, id, actor.Email, entry))

	return entry, nil
}

// Restore inserts a trashed snapshot back into its table under a new id and drops the entry.
// FieldOverrides are applied to the snapshot before insert. With Cascade, a booking's trashed
// document is restored first and the booking's foreign key is pointed at the new document id.
func (s *LifecycleService) Restore(ctx context.Context, trashID string, opts model.RestoreOptions, actor model.Actor) (restored model.Record, err error) {
	ctx, span := startSpan(ctx, "lifecycle.restore", "", 0)
	span.SetAttributes(attribute.String("trash_id", trashID))
	defer endSpan(span, &err)

	if _, err := uuid.Parse(trashID); err != nil {
		return model.Record{}, fmt.Errorf("%w: %s", model.ErrTrashEntryNotFound, trashID)
	}

	var entry model.TrashEntry
	if err := s.steps.begin(OperationRestore, "", 0, trashID, actor).read(ctx, "fetch", func(ctx context.Context) error {
		var findErr error
		entry, findErr = s.trash.FindByID(ctx, trashID)
		return findErr
	}); err != nil {
		return model.Record{}, err
	}

	r := s.steps.begin(OperationRestore, entry.OriginalTable, entry.RecordID, entry.ID, actor)
	return s.restore(ctx, r, entry, opts, actor)
}

func (s *LifecycleService) restore(ctx context.Context, r run, entry model.TrashEntry, opts model.RestoreOptions, actor model.Actor) (model.Record, error) {
	descriptor, err := s.registry.Lookup(entry.OriginalTable)
	if err != nil {
		return model.Record{}, err
	}

	snapshot, err := decodeSnapshot(entry.RecordData)
	if err != nil {
		return model.Record{}, fmt.Errorf("decode snapshot of trash entry %s: %w", entry.ID, err)
	}

	fields := descriptor.Clean(snapshot)

	if opts.Cascade && descriptor.Cascade != nil {
		link, docID, linked, err := descriptor.LinkedDocument(snapshot)
		if err != nil {
			return model.Record{}, err
		}
		if linked {
			newDocID, err := s.restoreLinkedDocument(ctx, r, link, docID, actor)
			if err != nil {
				return model.Record{}, err
			}
			fields[link.ForeignKey] = newDocID
		}
	}

	for key, value := range opts.FieldOverrides {
		fields[key] = value
	}
	fields = descriptor.Clean(fields)

	var newID int64
	if err := r.write(ctx, "insert", func(ctx context.Context) error {
		var createErr error
		newID, createErr = s.records.Create(ctx, entry.OriginalTable, fields)
		return createErr
	}); err != nil {
		return model.Record{}, err
	}

	if err := r.write(ctx, "remove_trash", func(ctx context.Context) error {
		return s.trash.Delete(ctx, entry.ID)
	}); err != nil {
		return model.Record{}, err
	}

	restored, readErr := s.readBack(ctx, descriptor, newID, fields)
	if readErr != nil {
		slog.Warn("restored row could not be read back", "table", entry.OriginalTable, "record_id", newID, "error", readErr)
	}

	if err := r.write(ctx, "audit", func(ctx context.Context) error {
		_, auditErr := s.audit.Record(ctx, model.AuditRestore, entry.OriginalTable, newID, snapshot, restored.Fields, actor)
		return auditErr
	}); err != nil {
		return model.Record{}, err
	}

	slog.Info("record restored", "table", entry.OriginalTable, "old_record_id", entry.RecordID,
		"record_id", newID, "trash_id", entry.ID, "actor", actor.Email)
	s.bus.Publish(event.New(event.TypeRecordRestored, entry.OriginalTable, newID, actor.Email, restored))

	return restored, nil
}

// restoreLinkedDocument returns the id a restored booking should point at. A document that
// was never trashed and still exists keeps its id.
func (s *LifecycleService) restoreLinkedDocument(ctx context.Context, r run, link catalog.SacramentLink, docID int64, actor model.Actor) (int64, error) {
	var docEntry model.TrashEntry
	err := r.read(ctx, "find_document", func(ctx context.Context) error {
		var findErr error
		docEntry, findErr = s.trash.FindLatestByRecord(ctx, link.Table, docID)
		return findErr
	})
	if err == nil {
		restored, err := s.restore(ctx, r.scoped("cascade"), docEntry, model.RestoreOptions{}, actor)
		if err != nil {
			return 0, err
		}
		return restored.ID, nil
	}
	if !errors.Is(err, model.ErrTrashEntryNotFound) {
		return 0, err
	}

	err = r.read(ctx, "check_document", func(ctx context.Context) error {
		_, readErr := s.records.Read(ctx, link.Table, docID)
		return readErr
	})
	if errors.Is(err, model.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: %s#%d is neither trashed nor present", model.ErrCascadeResolution, link.Table, docID)
	}
	if err != nil {
		return 0, err
	}
	return docID, nil
}

func (s *LifecycleService) readBack(ctx context.Context, descriptor catalog.TableDescriptor, id int64, inserted map[string]any) (model.Record, error) {
	record, err := s.records.Read(ctx, descriptor.Name, id)
	if err == nil {
		return record, nil
	}

	fields := make(map[string]any, len(inserted)+1)
	for k, v := range inserted {
		fields[k] = v
	}
	fields[descriptor.PrimaryKey] = id
	return model.Record{Table: descriptor.Name, ID: id, Fields: fields}, err
}

// Purge irreversibly removes a trash entry and the stored objects its snapshot references.
// The entry is always re-read by id; a booking's still-trashed document is purged first.
// Object-store failures are reported in the result and never stop the entry's removal.
// No audit entry is written.
func (s *LifecycleService) Purge(ctx context.Context, trashID string) (result model.PurgeResult, err error) {
	ctx, span := startSpan(ctx, "lifecycle.purge", "", 0)
	span.SetAttributes(attribute.String("trash_id", trashID))
	defer endSpan(span, &err)

	if _, err := uuid.Parse(trashID); err != nil {
		return model.PurgeResult{}, fmt.Errorf("%w: %s", model.ErrTrashEntryNotFound, trashID)
	}

	var entry model.TrashEntry
	if err := s.steps.begin(OperationPurge, "", 0, trashID, model.Actor{}).read(ctx, "fetch", func(ctx context.Context) error {
		var findErr error
		entry, findErr = s.trash.FindByID(ctx, trashID)
		return findErr
	}); err != nil {
		return model.PurgeResult{}, err
	}

	r := s.steps.begin(OperationPurge, entry.OriginalTable, entry.RecordID, entry.ID, model.Actor{})
	return s.purge(ctx, r, entry)
}

func (s *LifecycleService) purge(ctx context.Context, r run, entry model.TrashEntry) (model.PurgeResult, error) {
	result := model.PurgeResult{
		TrashEntryID:    entry.ID,
		OriginalTable:   entry.OriginalTable,
		RecordID:        entry.RecordID,
		RemovedObjects:  make([]model.StorageRef, 0),
		StorageFailures: make([]model.StorageFailure, 0),
	}

	snapshot, err := decodeSnapshot(entry.RecordData)
	if err != nil {
		slog.Warn("purging trash entry with unreadable snapshot", "trash_id", entry.ID, "error", err)
		snapshot = map[string]any{}
	}

	descriptor, err := s.registry.Lookup(entry.OriginalTable)
	if err != nil {
		slog.Warn("purging trash entry of unregistered table", "trash_id", entry.ID, "table", entry.OriginalTable)
		descriptor = catalog.TableDescriptor{Name: entry.OriginalTable}
	}

	child, err := s.linkedTrashEntry(ctx, r, descriptor, snapshot)
	if err != nil {
		return model.PurgeResult{}, err
	}
	if child != nil {
		childResult, err := s.purge(ctx, r.scoped("cascade"), *child)
		if err != nil {
			return model.PurgeResult{}, err
		}
		result.Cascaded = append(result.Cascaded, childResult)
	}

	for _, group := range groupByBucket(descriptor.StorageRefs(snapshot, s.objects)) {
		paths := make([]string, 0, len(group.refs))
		for _, ref := range group.refs {
			paths = append(paths, ref.Path)
		}

		removeCtx, cancel := r.stepContext(ctx)
		removeErr := s.objects.Remove(removeCtx, group.bucket, paths)
		cancel()

		if removeErr != nil {
			slog.Warn("object removal failed during purge", "trash_id", entry.ID, "bucket", group.bucket,
				"paths", paths, "error", removeErr)
			for _, ref := range group.refs {
				result.StorageFailures = append(result.StorageFailures, model.StorageFailure{Ref: ref, Reason: removeErr.Error()})
			}
			continue
		}
		result.RemovedObjects = append(result.RemovedObjects, group.refs...)
	}

	if err := r.write(ctx, "remove_trash", func(ctx context.Context) error {
		return s.trash.Delete(ctx, entry.ID)
	}); err != nil {
		return model.PurgeResult{}, err
	}

	slog.Info("trash entry purged", "trash_id", entry.ID, "table", entry.OriginalTable, "record_id", entry.RecordID,
		"removed_objects", len(result.RemovedObjects), "storage_failures", len(result.StorageFailures))
	s.bus.Publish(event.New(event.TypeTrashPurged, entry.OriginalTable, entry.RecordID, "", result))

	return result, nil
}

// linkedTrashEntry finds the still-trashed document a booking snapshot points at, if any.
func (s *LifecycleService) linkedTrashEntry(ctx context.Context, r run, descriptor catalog.TableDescriptor, snapshot map[string]any) (*model.TrashEntry, error) {
	link, docID, linked, err := descriptor.LinkedDocument(snapshot)
	if err != nil {
		slog.Warn("skipping document cascade on purge", "table", descriptor.Name, "error", err)
		return nil, nil
	}
	if !linked {
		return nil, nil
	}

	var child model.TrashEntry
	err = r.read(ctx, "find_document", func(ctx context.Context) error {
		var findErr error
		child, findErr = s.trash.FindLatestByRecord(ctx, link.Table, docID)
		return findErr
	})
	if errors.Is(err, model.ErrTrashEntryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &child, nil
}

type bucketRefs struct {
	bucket string
	refs   []model.StorageRef
}

func groupByBucket(refs []model.StorageRef) []bucketRefs {
	groups := make([]bucketRefs, 0)
	index := map[string]int{}
	for _, ref := range refs {
		i, ok := index[ref.Bucket]
		if !ok {
			i = len(groups)
			index[ref.Bucket] = i
			groups = append(groups, bucketRefs{bucket: ref.Bucket})
		}
		groups[i].refs = append(groups[i].refs, ref)
	}
	return groups
}

func decodeSnapshot(raw string) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.UseNumber()

	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("snapshot is not an object")
	}
	return fields, nil
}

func startSpan(ctx context.Context, name string, table string, id int64) (context.Context, trace.Span) {
	ctx, span := tracing.Tracer().Start(ctx, name)
	if table != "" {
		span.SetAttributes(attribute.String("table", table), attribute.Int64("record_id", id))
	}
	return ctx, span
}

func endSpan(span trace.Span, err *error) {
	if err != nil && *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}
