package employee

// DefaultRoster is used when no roster file is configured or present.
var DefaultRoster = []Employee{
	{Number: "123002", Name: "Remon Gilsing"},
	{Number: "123004", Name: "Ed van de Ven"},
	{Number: "123006", Name: "Kevin Slot"},
	{Number: "123007", Name: "Thijs Steenbakkers"},
	{Number: "123009", Name: "Aron van Vreede"},
	{Number: "123021", Name: "Tomasz Zywica"},
	{Number: "123023", Name: "Mark Verhoeven"},
	{Number: "123025", Name: "Geert Maurix"},
	{Number: "123033", Name: "Dorian Peters"},
	{Number: "123034", Name: "Kelvin van Baalen"},
	{Number: "123035", Name: "Bas Berkvens"},
	{Number: "123042", Name: "Maickel Lelieveld"},
	{Number: "123047", Name: "Dylan Lelieveld"},
	{Number: "123048", Name: "Henri Wittebol"},
	{Number: "123052", Name: "Robert Basters"},
	{Number: "123054", Name: "Willem vari der Sanden"},
	{Number: "123076", Name: "Mark Danyl"},
	{Number: "123078", Name: "Marco Nabuurs"},
	{Number: "123079", Name: "Lars van der Eridan"},
	{Number: "123081", Name: "Uitzend 1"},
	{Number: "123082", Name: "Uitzend 2"},
	{Number: "123083", Name: "Zoltan Gombos"},
	{Number: "123084", Name: "Janusz Solarewicz"},
	{Number: "123085", Name: "Dynand Hanegraaf"},
	{Number: "123086", Name: "Mike Schotanus"},
	{Number: "123087", Name: "Falco Morelissen"},
	{Number: "123088", Name: "Cristiaan Dinges"},
	{Number: "123098", Name: "Stage 1"},
	{Number: "123099", Name: "Stage 2"},
}

// NewDefaultDirectory returns a directory over DefaultRoster.
func NewDefaultDirectory() *Directory {
	d, err := NewDirectory(DefaultRoster)
	if err != nil {
		panic("employee: invalid default roster: " + err.Error())
	}
	return d
}
