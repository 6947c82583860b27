package models

// Sector is an administrative district. It partitions properties and sector documents.
type Sector struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:80;not null;uniqueIndex" json:"name"`
}

// DefaultSectors is the municipal district catalog installed on first start.
var DefaultSectors = []Sector{
	{ID: 1, Name: "Winiary"},
	{ID: 2, Name: "Skarpa"},
	{ID: 3, Name: "Miodowa"},
	{ID: 4, Name: "Stare Miasto"},
	{ID: 5, Name: "Tysiąclecia"},
	{ID: 6, Name: "Kochanowskiego"},
	{ID: 7, Name: "Dworcowa"},
	{ID: 8, Name: "Trzepowo"},
	{ID: 9, Name: "Łukasiewicza"},
	{ID: 10, Name: "Kolegialna"},
	{ID: 11, Name: "Wyszogrodzka"},
	{ID: 12, Name: "Międzytorze"},
	{ID: 13, Name: "Podolszyce Pn."},
	{ID: 14, Name: "Podolszyce Pd."},
	{ID: 15, Name: "Zielony Jar"},
	{ID: 16, Name: "Borowiczki"},
	{ID: 17, Name: "Imielnica"},
	{ID: 18, Name: "Radziwie"},
	{ID: 19, Name: "Góry"},
	{ID: 20, Name: "Ciechomice"},
	{ID: 21, Name: "Pradolina Wisły"},
}
