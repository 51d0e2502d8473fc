package pricing

import (
	"fmt"
	"strings"
)

// FormatBRL renders cents as Brazilian currency, e.g. 123456 -> "R$ 1.234,56".
func FormatBRL(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	reais := fmt.Sprintf("%d", cents/100)
	var b strings.Builder
	for i, r := range reais {
		if i > 0 && (len(reais)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), cents%100)
}
