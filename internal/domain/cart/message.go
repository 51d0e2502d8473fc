package cart

import (
	"fmt"
	"net/url"
	"strings"

	"oifit/internal/domain/pricing"
)

// WhatsAppMessage builds the order text sent to the shop's WhatsApp.
func WhatsAppMessage(items []LineItem) string {
	lines := []string{"Olá! Gostaria de fazer um pedido:", ""}
	for _, it := range items {
		line := fmt.Sprintf("- %s (x%d) - %s", it.Product.Name, it.Quantity, pricing.FormatBRL(pricing.ToCents(it.Subtotal())))
		if it.Size != "" {
			line += " | Tam: " + it.Size
		}
		if it.Color != "" {
			line += " | Cor: " + it.Color
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", fmt.Sprintf("*Total: %s*", pricing.FormatBRL(pricing.ToCents(totalPrice(items)))))
	return strings.Join(lines, "\n")
}

// wa.me のリンク
func WhatsAppURL(number string, items []LineItem) string {
	return "https://wa.me/" + number + "?text=" + url.QueryEscape(WhatsAppMessage(items))
}
