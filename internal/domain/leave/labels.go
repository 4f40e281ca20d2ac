package leave

// TypeOption describes a leave type as offered on the request form.
type TypeOption struct {
	ID        string
	Name      string
	Icon      string
	Available string
	Color     string
}

// TypeOptions lists the selectable leave types in form order.
var TypeOptions = []TypeOption{
	{ID: TypeADV, Name: "ADV-dagen", Icon: "📅", Available: "18 uur beschikbaar", Color: "bg-orange-100"},
	{ID: TypeLeave, Name: "Verlof", Icon: "🏖️", Available: "Onbeperkt", Color: "bg-blue-100"},
	{ID: TypeSick, Name: "Ziekte", Icon: "🏥", Color: "bg-red-100"},
	{ID: TypePersonal, Name: "Persoonlijk", Icon: "👤", Color: "bg-purple-100"},
}

var typeLabels = map[string]string{
	TypeADV:      "ADV-dagen",
	TypeLeave:    "Verlof",
	TypeSick:     "Ziekte",
	TypePersonal: "Persoonlijk",
}

// adminTypeLabels are the wordings used on the approval pages.
var adminTypeLabels = map[string]string{
	TypeLeave:    "Verlof/Vakantie",
	TypeSick:     "Dokter/Tandarts",
	TypePersonal: "Bijzonder verlof",
}

// TypeLabel returns the overview label for a leave type, or the raw value.
func TypeLabel(t string) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return t
}

// AdminTypeLabel returns the approval-page label for a leave type, or the raw value.
func AdminTypeLabel(t string) string {
	if l, ok := adminTypeLabels[t]; ok {
		return l
	}
	return t
}

// StatusLabel returns the Dutch label for a status. Unknown values read as pending.
func StatusLabel(s string) string {
	switch s {
	case StatusApproved:
		return "Goedgekeurd"
	case StatusRejected:
		return "Afgewezen"
	default:
		return "In behandeling"
	}
}

// StatusColor returns the badge classes for a status.
func StatusColor(s string) string {
	switch s {
	case StatusApproved:
		return "bg-green-100 text-green-800"
	case StatusRejected:
		return "bg-red-100 text-red-800"
	default:
		return "bg-yellow-100 text-yellow-800"
	}
}

// StatusDotColor returns the calendar marker class for a status.
func StatusDotColor(s string) string {
	switch s {
	case StatusApproved:
		return "bg-green-500"
	case StatusRejected:
		return "bg-red-500"
	default:
		return "bg-yellow-500"
	}
}

// DecisionVerb returns the past participle used in confirmation messages.
func DecisionVerb(s string) string {
	if s == StatusApproved {
		return "goedgekeurd"
	}
	return "afgewezen"
}
