package catalog

const (
	BookingTable         = "booking_tbl"
	WeddingDocumentTable = "booking_wedding_docu_tbl"
	BaptismDocumentTable = "booking_baptism_docu_tbl"
	BurialDocumentTable  = "booking_burial_docu_tbl"

	certificatesBucket = "certificates"
)

func certificates(fields ...string) []AttachmentField {
	out := make([]AttachmentField, 0, len(fields))
	for _, f := range fields {
		out = append(out, AttachmentField{Field: f, Bucket: certificatesBucket})
	}
	return out
}

// Default is the parish console's table catalog.
func Default() *Registry {
	return NewRegistry(
		TableDescriptor{
			Name:           BookingTable,
			RequiredFields: []string{"sacrament", "date", "time"},
			ComputedFields: []string{"requester_name", "user"},
			Cascade: &SacramentCascade{
				TypeField: "sacrament",
				Links: map[SacramentType]SacramentLink{
					Wedding: {Table: WeddingDocumentTable, ForeignKey: "wedding_docu_id"},
					Baptism: {Table: BaptismDocumentTable, ForeignKey: "baptism_docu_id"},
					Burial:  {Table: BurialDocumentTable, ForeignKey: "burial_docu_id"},
				},
			},
		},
		TableDescriptor{
			Name: WeddingDocumentTable,
			Attachments: certificates(
				"groom_1x1", "bride_1x1",
				"groom_baptismal_cert", "bride_baptismal_cert",
				"groom_confirmation_cert", "bride_confirmation_cert",
				"groom_cenomar", "bride_cenomar",
				"groom_banns", "bride_banns",
				"groom_permission", "bride_permission",
				"marriage_license",
			),
		},
		TableDescriptor{
			Name: BaptismDocumentTable,
			Attachments: certificates(
				"birth_certificate", "parents_marriage_cert", "baptismal_seminar_cert",
			),
		},
		TableDescriptor{
			Name: BurialDocumentTable,
			Attachments: certificates(
				"death_certificate", "burial_permit", "deceased_baptismal_cert",
			),
		},
		TableDescriptor{
			Name:           "priest_tbl",
			RequiredFields: []string{"first_name", "last_name"},
			Attachments:    []AttachmentField{{Field: "profile_picture", Bucket: "priest-images"}},
		},
		TableDescriptor{
			Name:           "event_tbl",
			RequiredFields: []string{"title", "date"},
			Attachments:    []AttachmentField{{Field: "image", Bucket: "event-images"}},
		},
		TableDescriptor{
			Name:           "donation_tbl",
			RequiredFields: []string{"donor_name", "amount"},
		},
		TableDescriptor{
			Name:           "announcement_tbl",
			RequiredFields: []string{"title", "content"},
			Attachments:    []AttachmentField{{Field: "image", Bucket: "announcement-images"}},
		},
	)
}
