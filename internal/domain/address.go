package domain

// Address is a shipping or billing destination attached to a checkout.
type Address struct {
	FirstName   string `json:"firstName,omitempty" validate:"max=255"`
	LastName    string `json:"lastName,omitempty" validate:"max=255"`
	Company     string `json:"company,omitempty" validate:"max=255"`
	Address1    string `json:"address1" validate:"required,max=255"`
	Address2    string `json:"address2,omitempty" validate:"max=255"`
	City        string `json:"city" validate:"required,max=255"`
	Province    string `json:"province,omitempty" validate:"max=255"`
	CountryCode string `json:"countryCode" validate:"required,iso3166_1_alpha2"`
	Zip         string `json:"zip,omitempty" validate:"max=32"`
	Phone       string `json:"phone,omitempty" validate:"max=64"`
}
