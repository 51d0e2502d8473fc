package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// 配送先の都市と固定送料
type City struct {
	Name    string          `json:"name"`
	State   string          `json:"state"`
	ZipCode string          `json:"zipCode"`
	Freight decimal.Decimal `json:"freight"`
}

// 店舗（Ouro Fino/MG）から配送できる都市。Ouro Fino以外の送料は暫定値
var cities = []City{
	{Name: "Ouro Fino", State: "MG", ZipCode: "37570-000", Freight: decimal.RequireFromString("10.00")},
	{Name: "Inconfidentes", State: "MG", ZipCode: "37576-000", Freight: decimal.RequireFromString("15.00")},
	{Name: "Borda da Mata", State: "MG", ZipCode: "37564-000", Freight: decimal.RequireFromString("15.00")},
	{Name: "Jacutinga", State: "MG", ZipCode: "37590-000", Freight: decimal.RequireFromString("20.00")},
	{Name: "Pouso Alegre", State: "MG", ZipCode: "37550-000", Freight: decimal.RequireFromString("25.00")},
}

// 一覧のコピーを返す
func Cities() []City {
	out := make([]City, len(cities))
	copy(out, cities)
	return out
}

func LookupCity(name string) (City, bool) {
	name = strings.TrimSpace(name)
	for _, c := range cities {
		if c.Name == name {
			return c, true
		}
	}
	return City{}, false
}

// 未登録の都市は送料0
func Freight(cityName string) decimal.Decimal {
	c, ok := LookupCity(cityName)
	if !ok {
		return decimal.Zero
	}
	return c.Freight
}
