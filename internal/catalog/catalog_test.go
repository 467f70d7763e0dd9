package catalog

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go-parish-admin/internal/model"
)

type prefixParser struct {
	base string
}

func (p prefixParser) ParsePublicURL(raw string) (model.StorageRef, bool) {
	if !strings.HasPrefix(raw, p.base+"/") {
		return model.StorageRef{}, false
	}
	bucket, path, ok := strings.Cut(strings.TrimPrefix(raw, p.base+"/"), "/")
	if !ok || path == "" {
		return model.StorageRef{}, false
	}
	return model.StorageRef{Bucket: bucket, Path: path, OriginalURL: raw}, true
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	registry := Default()

	tests := []struct {
		sacrament SacramentType
		table     string
		fk        string
		ok        bool
	}{
		{Wedding, WeddingDocumentTable, "wedding_docu_id", true},
		{Baptism, BaptismDocumentTable, "baptism_docu_id", true},
		{Burial, BurialDocumentTable, "burial_docu_id", true},
		{"wedding", WeddingDocumentTable, "wedding_docu_id", true},
		{Confession, "", "", false},
		{Anointing, "", "", false},
		{Communion, "", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.sacrament), func(t *testing.T) {
			link, ok := registry.Resolve(tt.sacrament)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.table, link.Table)
			require.Equal(t, tt.fk, link.ForeignKey)
		})
	}
}

func TestRegistryLookupUnknownTable(t *testing.T) {
	t.Parallel()

	_, err := Default().Lookup("pg_catalog.pg_user")
	require.ErrorIs(t, err, model.ErrUnknownTable)
}

func TestLinkedDocument(t *testing.T) {
	t.Parallel()

	booking, err := Default().Lookup(BookingTable)
	require.NoError(t, err)

	t.Run("wedding booking with document", func(t *testing.T) {
		link, id, ok, err := booking.LinkedDocument(map[string]any{"sacrament": "Wedding", "wedding_docu_id": json.Number("42")})
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, WeddingDocumentTable, link.Table)
		require.Equal(t, int64(42), id)
	})

	t.Run("wedding booking without document", func(t *testing.T) {
		_, _, ok, err := booking.LinkedDocument(map[string]any{"sacrament": "Wedding", "wedding_docu_id": nil})
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("confession has no cascade", func(t *testing.T) {
		_, _, ok, err := booking.LinkedDocument(map[string]any{"sacrament": "Confession"})
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("document key on a sacrament without linkage", func(t *testing.T) {
		_, _, _, err := booking.LinkedDocument(map[string]any{"sacrament": "Communion", "burial_docu_id": float64(7)})
		require.ErrorIs(t, err, model.ErrCascadeResolution)
	})

	t.Run("non-booking tables never cascade", func(t *testing.T) {
		priest, lookupErr := Default().Lookup("priest_tbl")
		require.NoError(t, lookupErr)
		_, _, ok, err := priest.LinkedDocument(map[string]any{"wedding_docu_id": 1})
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestCleanStripsKeyAndComputedFields(t *testing.T) {
	t.Parallel()

	booking, err := Default().Lookup(BookingTable)
	require.NoError(t, err)

	snapshot := map[string]any{"id": 100, "sacrament": "Wedding", "requester_name": "Juan", "user": map[string]any{"name": "Juan"}}
	cleaned := booking.Clean(snapshot)

	require.Equal(t, map[string]any{"sacrament": "Wedding"}, cleaned)
	require.Contains(t, snapshot, "id", "input snapshot must not be mutated")
}

func TestStorageRefsUsesDeclaredAttachmentFields(t *testing.T) {
	t.Parallel()

	wedding, err := Default().Lookup(WeddingDocumentTable)
	require.NoError(t, err)

	base := "https://files.parish.test/files"
	refs := wedding.StorageRefs(map[string]any{
		"groom_1x1":     base + "/certificates/groom_123.png",
		"bride_1x1":     base + "/certificates/groom_123.png",
		"groom_cenomar": "https://elsewhere.test/x.pdf",
		"notes":         base + "/certificates/not-an-attachment.png",
		"bride_banns":   42,
	}, prefixParser{base: base})

	require.Equal(t, []model.StorageRef{{
		Bucket:      "certificates",
		Path:        "groom_123.png",
		OriginalURL: base + "/certificates/groom_123.png",
	}}, refs)
}

func TestStorageRefsSkipsObjectsOutsideDeclaredBucket(t *testing.T) {
	t.Parallel()

	base := "https://files.parish.test/files"
	parser := prefixParser{base: base}

	wedding, err := Default().Lookup(WeddingDocumentTable)
	require.NoError(t, err)

	refs := wedding.StorageRefs(map[string]any{
		"groom_1x1": base + "/priest-images/fr_jose.png",
		"bride_1x1": base + "/certificates/bride_7.png",
	}, parser)
	require.Len(t, refs, 1)
	require.Equal(t, "certificates", refs[0].Bucket)
	require.Equal(t, "bride_7.png", refs[0].Path)

	priest, err := Default().Lookup("priest_tbl")
	require.NoError(t, err)

	require.Empty(t, priest.StorageRefs(map[string]any{
		"profile_picture": base + "/certificates/groom_123.png",
	}, parser))
}

func TestValidateRequired(t *testing.T) {
	t.Parallel()

	priest, err := Default().Lookup("priest_tbl")
	require.NoError(t, err)

	require.NoError(t, priest.ValidateRequired(map[string]any{"first_name": "Jose", "last_name": "Rizal"}))

	err = priest.ValidateRequired(map[string]any{"first_name": "  "})
	require.ErrorIs(t, err, model.ErrInvalidInput)
	require.Contains(t, err.Error(), "first_name, last_name")
}

func TestAsID(t *testing.T) {
	t.Parallel()

	for _, v := range []any{int64(5), 5, int32(5), float64(5), json.Number("5"), " 5 "} {
		id, ok, err := AsID(v)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(5), id)
	}

	_, ok, err := AsID("")
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = AsID(5.5)
	require.Error(t, err)

	_, _, err = AsID(true)
	require.Error(t, err)
}
