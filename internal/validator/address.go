package validator

import (
	"strings"
)

const DefaultCountry = "BR"

// 住所登録フォーム
type AddressForm struct {
	Street       string  `json:"street"`
	Number       string  `json:"number"`
	Complement   *string `json:"complement"`
	Neighborhood string  `json:"neighborhood"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	ZipCode      string  `json:"zipCode"`
	Country      string  `json:"country"`
}

// Normalize trims every field, upper-cases the state and fills the default country.
func (f AddressForm) Normalize() AddressForm {
	out := AddressForm{
		Street:       strings.TrimSpace(f.Street),
		Number:       strings.TrimSpace(f.Number),
		Neighborhood: strings.TrimSpace(f.Neighborhood),
		City:         strings.TrimSpace(f.City),
		State:        strings.ToUpper(strings.TrimSpace(f.State)),
		ZipCode:      strings.TrimSpace(f.ZipCode),
		Country:      strings.ToUpper(strings.TrimSpace(f.Country)),
	}
	if f.Complement != nil {
		c := strings.TrimSpace(*f.Complement)
		if c != "" {
			out.Complement = &c
		}
	}
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	return out
}

func (f AddressForm) Validate() error {
	n := f.Normalize()
	return collect(
		required("street", n.Street),
		maxLen("street", n.Street, 255),
		required("number", n.Number),
		maxLen("number", n.Number, 20),
		required("neighborhood", n.Neighborhood),
		required("city", n.City),
		stateCode(n.State),
		zipCode(n.ZipCode),
		countryCode(n.Country),
	)
}

// UFは2文字
func stateCode(v string) Field {
	if len(v) != 2 {
		return Invalid("state", "use the 2-letter state code")
	}
	for _, r := range v {
		if r < 'A' || r > 'Z' {
			return Invalid("state", "use the 2-letter state code")
		}
	}
	return Ok("state")
}

// CEPは数字8桁（ハイフン可）
func zipCode(v string) Field {
	if len(digitsOnly(v)) < 8 {
		return Invalid("zipCode", "invalid zip code")
	}
	return Ok("zipCode")
}

func countryCode(v string) Field {
	if len(v) != 2 {
		return Invalid("country", "use the 2-letter country code")
	}
	return Ok("country")
}
