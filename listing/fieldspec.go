package listing

// LocatorKind names one structural strategy for resolving a field to a
// concrete control. Strategies are tried in the order they appear in a
// FieldSpec; the first one that yields a usable control wins.
type LocatorKind string

const (
	// LocateID matches a control or wrapper by exact element id,
	// preferring a visible match over a hidden one.
	LocateID LocatorKind = "id"
	// LocateLabeled finds the field container whose label text equals
	// the locator value, then searches it for a usable control.
	LocateLabeled LocatorKind = "labeled"
	// LocateSignature matches a div by its full class signature combined
	// with an empty display span, for fields that start blank.
	LocateSignature LocatorKind = "signature"
)

// Locator is one (strategy, value) candidate.
type Locator struct {
	Kind  LocatorKind
	Value string
}

// SignatureClass is the full class signature of the blank display div
// the host renders before a select field has a value. Recorded from a
// live render; only the signature strategy depends on it.
const SignatureClass = "xjyslct xjbqb8w x13fuv20 x18b5jzi x1q0q8m5 x1t7ytsu x972fbf x10w94by " +
	"x1qhh985 x14e42zd x9f619 xzsf02u x78zum5 x1jchvi3 x1fcty0u x132q4wb " +
	"xdj266r x14z9mp xat24cr x1lziwak x1a2a7pz x1a8lsjc xv54qhq xf7dkkf " +
	"x9desvi x1n2onr6 x16tdsg8 xh8yej3 x1ja2u2z"

// Form labels as rendered by the Indonesian Marketplace vehicle form.
const (
	LabelVehicleType = "Jenis kendaraan"
	LabelYear        = "Tahun"
	LabelMake        = "Merek"
	LabelModel       = "Model"
	LabelPrice       = "Harga"
	LabelMileage     = "Jarak Tempuh"
	LabelDescription = "Keterangan"
	LabelLocation    = "Lokasi"
)

// FieldSpec declares one target field: how to find it, what to write,
// and how to judge the read-back. Whether the field is required is not
// declared here — it is inferred at runtime: a label match with no
// usable control is required-and-unsatisfied, a label that never
// appears means the field does not exist on this form variant.
type FieldSpec struct {
	// Name is the stable key used in statuses and diagnostics.
	Name string
	// Label is the visible label text identifying the field container.
	Label string
	// Value is the target value to commit.
	Value string
	// Locators are the candidate strategies, tried in order.
	Locators []Locator
	// Comparator judges the read-back after a commit.
	Comparator Comparator
	// DescriptiveText marks fields that must hold prose; a purely
	// numeric read-back is rejected regardless of comparator outcome.
	DescriptiveText bool
	// Select marks fields the host tracks by selection identity. Value
	// injection alone never satisfies them; the Action Sequencer must
	// drive a genuine selection event.
	Select bool
}

// SpecsFor builds the full field specification set for one Listing.
// Candidate ids are the wrapper/control ids observed across the form's
// structurally different renders; the labeled and signature strategies
// cover renders where none of them survive.
func SpecsFor(l Listing) []FieldSpec {
	return []FieldSpec{
		{
			Name:  "vehicle_type",
			Label: LabelVehicleType,
			Value: l.VehicleType,
			Locators: []Locator{
				{LocateID, "_r_25_"},
				{LocateID, "_r_5u_"},
				{LocateID, "_r_7l_"},
				{LocateID, "_r_76_"},
				{LocateID, "_r_4p_"},
				{LocateLabeled, LabelVehicleType},
				{LocateSignature, SignatureClass},
			},
			Comparator: CompareSubstring,
			Select:     true,
		},
		{
			Name:  "year",
			Label: LabelYear,
			Value: l.Year,
			Locators: []Locator{
				{LocateID, "_r_2k_"},
				{LocateID, "_r_2c_"},
				{LocateID, "_r_2v_"},
				{LocateID, "_r_6b"},
				{LocateLabeled, LabelYear},
				{LocateSignature, SignatureClass},
			},
			Comparator: CompareDigitsOnly,
			Select:     true,
		},
		{
			Name:  "make",
			Label: LabelMake,
			Value: l.Make,
			Locators: []Locator{
				{LocateID, "_r_1s_"},
				{LocateID, "_r_22_"},
				{LocateID, "_r_6r_"},
				{LocateLabeled, LabelMake},
			},
			Comparator: CompareExactText,
			Select:     true,
		},
		{
			Name:  "model",
			Label: LabelModel,
			Value: l.Model,
			Locators: []Locator{
				{LocateID, "_r_26_"},
				{LocateID, "_r_6a_"},
				{LocateID, "_r_76_"},
				{LocateID, "_r_2s_"},
				{LocateLabeled, LabelModel},
			},
			Comparator:      CompareExactText,
			DescriptiveText: true,
		},
		{
			Name:  "price",
			Label: LabelPrice,
			Value: l.Price,
			Locators: []Locator{
				{LocateID, "_r_3a_"},
				{LocateLabeled, LabelPrice},
			},
			Comparator: CompareDigitsOnly,
		},
		{
			Name:  "mileage",
			Label: LabelMileage,
			Value: l.Mileage,
			Locators: []Locator{
				{LocateID, "_r_5g_"},
				{LocateID, "_r_91_"},
				{LocateLabeled, LabelMileage},
			},
			Comparator: CompareDigitsOnly,
		},
		{
			Name:  "description",
			Label: LabelDescription,
			Value: l.Description,
			Locators: []Locator{
				{LocateID, "_r_3e_"},
				{LocateLabeled, LabelDescription},
			},
			Comparator: CompareExactText,
		},
		{
			Name:  "location",
			Label: LabelLocation,
			Value: l.Location,
			Locators: []Locator{
				{LocateLabeled, LabelLocation},
			},
			Comparator: CompareExactText,
		},
	}
}

// SelectSpecs filters specs down to the select-like fields the Action
// Sequencer must confirm with a genuine selection event.
func SelectSpecs(specs []FieldSpec) []FieldSpec {
	var out []FieldSpec
	for _, s := range specs {
		if s.Select {
			out = append(out, s)
		}
	}
	return out
}

// Labels returns the label set the page-ready probe scans for.
func Labels(specs []FieldSpec) []string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Label)
	}
	return out
}
