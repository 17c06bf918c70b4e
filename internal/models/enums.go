package models

// Option is a value/label pair used by the public reference-data endpoints.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type PropertyType string

const (
	PropertyHouse       PropertyType = "HOUSE"
	PropertyApartment   PropertyType = "APARTMENT"
	PropertyStudio      PropertyType = "STUDIO"
	PropertyLoft        PropertyType = "LOFT"
	PropertyOffice      PropertyType = "OFFICE"
	PropertyRetailSpace PropertyType = "RETAIL_SPACE"
	PropertyWarehouse   PropertyType = "WAREHOUSE"
	PropertyLand        PropertyType = "LAND"
	PropertyGarage      PropertyType = "GARAGE"
	PropertyParkingSpot PropertyType = "PARKING_SPOT"
)

var PropertyTypes = []PropertyType{
	PropertyHouse, PropertyApartment, PropertyStudio, PropertyLoft, PropertyOffice,
	PropertyRetailSpace, PropertyWarehouse, PropertyLand, PropertyGarage, PropertyParkingSpot,
}

var propertyTypeLabels = map[PropertyType]string{
	PropertyHouse:       "Maison",
	PropertyApartment:   "Appartement",
	PropertyStudio:      "Studio",
	PropertyLoft:        "Loft",
	PropertyOffice:      "Bureau",
	PropertyRetailSpace: "Commerce",
	PropertyWarehouse:   "Entrepôt",
	PropertyLand:        "Terrain",
	PropertyGarage:      "Garage",
	PropertyParkingSpot: "Emplacement de parking",
}

func (t PropertyType) Label() string { return labelOr(propertyTypeLabels, t) }
func (t PropertyType) IsValid() bool { _, ok := propertyTypeLabels[t]; return ok }

type TransactionType string

const (
	TransactionSale TransactionType = "SALE"
	TransactionRent TransactionType = "RENT"
)

var TransactionTypes = []TransactionType{TransactionSale, TransactionRent}

var transactionTypeLabels = map[TransactionType]string{
	TransactionSale: "Vente",
	TransactionRent: "Location",
}

func (t TransactionType) Label() string { return labelOr(transactionTypeLabels, t) }
func (t TransactionType) IsValid() bool { _, ok := transactionTypeLabels[t]; return ok }

type Province string

const (
	ProvinceBrussels       Province = "BRUXELLES_CAPITALE"
	ProvinceWalloonBrabant Province = "BRABANT_WALLON"
	ProvinceFlemishBrabant Province = "BRABANT_FLAMAND"
	ProvinceAntwerp        Province = "ANVERS"
	ProvinceLimburg        Province = "LIMBOURG"
	ProvinceLiege          Province = "LIEGE"
	ProvinceNamur          Province = "NAMUR"
	ProvinceHainaut        Province = "HAINAUT"
	ProvinceLuxembourg     Province = "LUXEMBOURG"
	ProvinceWestFlanders   Province = "FLANDRE_OCCIDENTALE"
	ProvinceEastFlanders   Province = "FLANDRE_ORIENTALE"
)

var Provinces = []Province{
	ProvinceBrussels, ProvinceWalloonBrabant, ProvinceFlemishBrabant, ProvinceAntwerp,
	ProvinceLimburg, ProvinceLiege, ProvinceNamur, ProvinceHainaut, ProvinceLuxembourg,
	ProvinceWestFlanders, ProvinceEastFlanders,
}

var provinceLabels = map[Province]string{
	ProvinceBrussels:       "Bruxelles-Capitale",
	ProvinceWalloonBrabant: "Brabant wallon",
	ProvinceFlemishBrabant: "Brabant flamand",
	ProvinceAntwerp:        "Anvers",
	ProvinceLimburg:        "Limbourg",
	ProvinceLiege:          "Liège",
	ProvinceNamur:          "Namur",
	ProvinceHainaut:        "Hainaut",
	ProvinceLuxembourg:     "Luxembourg",
	ProvinceWestFlanders:   "Flandre occidentale",
	ProvinceEastFlanders:   "Flandre orientale",
}

func (p Province) Label() string { return labelOr(provinceLabels, p) }
func (p Province) IsValid() bool { _, ok := provinceLabels[p]; return ok }

// EnergyRating is ordered from most to least efficient.
type EnergyRating string

const (
	EnergyAPlusPlus EnergyRating = "A_PLUS_PLUS"
	EnergyAPlus     EnergyRating = "A_PLUS"
	EnergyA         EnergyRating = "A"
	EnergyB         EnergyRating = "B"
	EnergyC         EnergyRating = "C"
	EnergyD         EnergyRating = "D"
	EnergyE         EnergyRating = "E"
	EnergyF         EnergyRating = "F"
	EnergyG         EnergyRating = "G"
)

var EnergyRatings = []EnergyRating{
	EnergyAPlusPlus, EnergyAPlus, EnergyA, EnergyB, EnergyC, EnergyD, EnergyE, EnergyF, EnergyG,
}

var energyRatingLabels = map[EnergyRating]string{
	EnergyAPlusPlus: "A++",
	EnergyAPlus:     "A+",
	EnergyA:         "A",
	EnergyB:         "B",
	EnergyC:         "C",
	EnergyD:         "D",
	EnergyE:         "E",
	EnergyF:         "F",
	EnergyG:         "G",
}

func (r EnergyRating) Label() string { return labelOr(energyRatingLabels, r) }
func (r EnergyRating) IsValid() bool { _, ok := energyRatingLabels[r]; return ok }

type ContactType string

const (
	ContactGeneral      ContactType = "GENERAL_CONTACT"
	ContactSellYourHome ContactType = "SELL_YOUR_HOME"
	ContactVisitRequest ContactType = "VISIT_REQUEST"
)

var contactTypeLabels = map[ContactType]string{
	ContactGeneral:      "Contact général",
	ContactSellYourHome: "Vendre votre bien",
	ContactVisitRequest: "Demande de visite",
}

func (t ContactType) Label() string { return labelOr(contactTypeLabels, t) }
func (t ContactType) IsValid() bool { _, ok := contactTypeLabels[t]; return ok }

type ContactStatus string

const (
	ContactNew        ContactStatus = "NEW"
	ContactInProgress ContactStatus = "IN_PROGRESS"
	ContactClosed     ContactStatus = "CLOSED"
)

var contactStatusLabels = map[ContactStatus]string{
	ContactNew:        "Nouveau",
	ContactInProgress: "En cours",
	ContactClosed:     "Clôturé",
}

func (s ContactStatus) Label() string { return labelOr(contactStatusLabels, s) }
func (s ContactStatus) IsValid() bool { _, ok := contactStatusLabels[s]; return ok }

type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

var userRoleLabels = map[UserRole]string{
	RoleAdmin:      "Administrateur",
	RoleSuperAdmin: "Super administrateur",
}

func (r UserRole) Label() string { return labelOr(userRoleLabels, r) }
func (r UserRole) IsValid() bool { _, ok := userRoleLabels[r]; return ok }

// OptionsOf builds the value/label list for any labelled enum.
func OptionsOf[T interface {
	~string
	Label() string
}](values []T) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Value: string(v), Label: v.Label()})
	}
	return out
}

func labelOr[T ~string](labels map[T]string, v T) string {
	if l, ok := labels[v]; ok {
		return l
	}
	return string(v)
}
