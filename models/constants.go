package models

// Resource types
const (
	ResourceCandidates     = "candidates"
	ResourceUsers          = "users"
	ResourcePurchaseOrders = "purchase_orders"
	ResourceBookings       = "bookings"
	ResourceAttendance     = "attendance"
)

var builtinSchemas = []*Schema{
	{
		Resource: ResourceCandidates,
		Title:    "Candidates",
		Fields: []FieldSpec{
			{Name: "name", Label: "Name", Kind: KindString, Required: true, Rules: "min=2,max=120", Searchable: true},
			{Name: "email", Label: "Email", Kind: KindString, Rules: "email", Searchable: true},
			{Name: "phone", Label: "Phone", Kind: KindString, Rules: "min=7,max=20", Searchable: true, Sensitive: true},
			{Name: "status", Label: "Status", Kind: KindString, Required: true, Filterable: true,
				Options: []string{"active", "placed", "dropout", "migrated"}},
			{Name: "course", Label: "Course", Kind: KindString, Filterable: true},
			{Name: "center", Label: "Center", Kind: KindString, Filterable: true},
			{Name: "batch", Label: "Batch", Kind: KindString, Filterable: true},
			{Name: "gender", Label: "Gender", Kind: KindString, Filterable: true,
				Options: []string{"female", "male", "other"}},
			{Name: "enrolledOn", Label: "Enrolled On", Kind: KindDate},
		},
	},
	{
		Resource: ResourceUsers,
		Title:    "Users",
		Fields: []FieldSpec{
			{Name: "name", Label: "Name", Kind: KindString, Required: true, Searchable: true},
			{Name: "email", Label: "Email", Kind: KindString, Required: true, Rules: "email", Searchable: true},
			{Name: "role", Label: "Role", Kind: KindString, Required: true, Filterable: true,
				Options: []string{"admin", "center_manager", "trainer", "counsellor", "mobilizer"}},
			{Name: "center", Label: "Center", Kind: KindString, Filterable: true},
			{Name: "status", Label: "Status", Kind: KindString, Filterable: true,
				Options: []string{"active", "inactive"}},
		},
	},
	{
		Resource: ResourcePurchaseOrders,
		Title:    "Purchase Orders",
		Fields: []FieldSpec{
			{Name: "poNumber", Label: "PO Number", Kind: KindString, Required: true, Searchable: true},
			{Name: "vendor", Label: "Vendor", Kind: KindString, Required: true, Searchable: true, Filterable: true},
			{Name: "status", Label: "Status", Kind: KindString, Required: true, Filterable: true,
				Options: []string{"pending", "approved", "rejected", "delivered"}},
			{Name: "priority", Label: "Priority", Kind: KindString, Filterable: true,
				Options: []string{"low", "medium", "high"}},
			{Name: "amount", Label: "Amount", Kind: KindNumber, Rules: "gte=0"},
			{Name: "orderedOn", Label: "Ordered On", Kind: KindDate},
		},
	},
	{
		Resource: ResourceBookings,
		Title:    "Bookings",
		Fields: []FieldSpec{
			{Name: "candidate", Label: "Candidate", Kind: KindString, Required: true, Searchable: true},
			{Name: "center", Label: "Center", Kind: KindString, Filterable: true},
			{Name: "room", Label: "Room", Kind: KindString, Searchable: true},
			{Name: "status", Label: "Status", Kind: KindString, Required: true, Filterable: true,
				Options: []string{"confirmed", "pending", "cancelled"}},
			{Name: "checkIn", Label: "Check In", Kind: KindDate},
		},
	},
	{
		Resource: ResourceAttendance,
		Title:    "Attendance",
		Fields: []FieldSpec{
			{Name: "candidate", Label: "Candidate", Kind: KindString, Required: true, Searchable: true},
			{Name: "batch", Label: "Batch", Kind: KindString, Filterable: true},
			{Name: "date", Label: "Date", Kind: KindDate, Required: true, Filterable: true},
			{Name: "status", Label: "Status", Kind: KindString, Required: true, Filterable: true,
				Options: []string{"present", "absent", "late"}},
			{Name: "remarks", Label: "Remarks", Kind: KindString, Rules: "max=500"},
		},
	},
}

// Schemas returns the declared schemas of every dashboard resource.
func Schemas() []*Schema {
	out := make([]*Schema, len(builtinSchemas))
	copy(out, builtinSchemas)
	return out
}

// LookupSchema returns the schema of a resource.
func LookupSchema(resource string) (*Schema, bool) {
	for _, s := range builtinSchemas {
		if s.Resource == resource {
			return s, true
		}
	}
	return nil, false
}
