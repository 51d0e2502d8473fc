package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"oifit/internal/domain/cart"
	"oifit/internal/domain/pricing"

	flag "github.com/spf13/pflag"
)

type variantFlags struct {
	size  string
	color string
}

func newVariantFlags(name string) (*flag.FlagSet, *variantFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	v := &variantFlags{}
	fs.StringVar(&v.size, "size", "", "size")
	fs.StringVar(&v.color, "color", "", "color")
	return fs, v
}

func (a *app) cart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("cart: missing subcommand")
	}
	switch args[0] {
	case "add":
		return a.cartAdd(ctx, args[1:])
	case "rm":
		return a.cartRemove(ctx, args[1:])
	case "qty":
		return a.cartQuantity(ctx, args[1:])
	case "ls":
		a.printCart(a.store.Items())
		return nil
	case "clear":
		a.store.Clear(ctx)
		fmt.Fprintln(a.out, "cart cleared")
		return nil
	}
	return fmt.Errorf("cart: unknown subcommand %q", args[0])
}

func (a *app) cartAdd(ctx context.Context, args []string) error {
	fs, v := newVariantFlags("cart add")
	qty := fs.Int64("qty", 1, "quantity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("cart add: product id required")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	if *qty < 1 || *qty > cart.MaxQuantity {
		return fmt.Errorf("cart add: qty must be between 1 and %d", cart.MaxQuantity)
	}

	p, err := a.api.Product(ctx, id)
	if err != nil {
		return fmt.Errorf("cart add: %w", err)
	}
	if !offered(p.Sizes, v.size) {
		return fmt.Errorf("cart add: size %q not offered (%v)", v.size, p.Sizes)
	}
	if !offered(p.Colors, v.color) {
		return fmt.Errorf("cart add: color %q not offered (%v)", v.color, p.Colors)
	}

	for i := int64(0); i < *qty; i++ {
		a.store.AddItem(ctx, p.Snapshot, v.size, v.color)
	}
	a.printCart(a.store.Items())
	return nil
}

func (a *app) cartRemove(ctx context.Context, args []string) error {
	fs, v := newVariantFlags("cart rm")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("cart rm: product id required")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	a.store.RemoveItem(ctx, id, v.size, v.color)
	a.printCart(a.store.Items())
	return nil
}

func (a *app) cartQuantity(ctx context.Context, args []string) error {
	fs, v := newVariantFlags("cart qty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("cart qty: product id and quantity required")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	n, err := strconv.ParseInt(fs.Arg(1), 10, 64)
	if err != nil {
		return fmt.Errorf("cart qty: invalid quantity %q", fs.Arg(1))
	}
	if n > cart.MaxQuantity {
		return fmt.Errorf("cart qty: quantity must be at most %d", cart.MaxQuantity)
	}
	//0以下は削除
	a.store.SetQuantity(ctx, id, n, v.size, v.color)
	a.printCart(a.store.Items())
	return nil
}

func (a *app) printCart(items []cart.LineItem) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "cart is empty")
		return
	}
	for _, it := range items {
		fmt.Fprintf(a.out, "%4d  %-30s x%-3d %12s", it.Product.ID, it.Product.Name, it.Quantity, pricing.FormatBRL(pricing.ToCents(it.Subtotal())))
		if it.Size != "" {
			fmt.Fprintf(a.out, "  Tam: %s", it.Size)
		}
		if it.Color != "" {
			fmt.Fprintf(a.out, "  Cor: %s", it.Color)
		}
		fmt.Fprintln(a.out)
	}
	fmt.Fprintf(a.out, "%d item(s), total %s\n", a.store.TotalItemCount(), pricing.FormatBRL(pricing.ToCents(a.store.TotalPrice())))
}

func (a *app) cities(ctx context.Context) error {
	list, err := a.api.Cities(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("cities: using built-in table")
		list = pricing.Cities()
	}
	for _, c := range list {
		fmt.Fprintf(a.out, "%-20s %s  %s  frete %s\n", c.Name, c.State, c.ZipCode, pricing.FormatBRL(pricing.ToCents(c.Freight)))
	}
	return nil
}

func (a *app) whatsapp(args []string) error {
	fs := flag.NewFlagSet("whatsapp", flag.ContinueOnError)
	number := fs.String("number", shopWhatsApp, "shop WhatsApp number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	items := a.store.Items()
	if len(items) == 0 {
		return errors.New("whatsapp: cart is empty")
	}
	fmt.Fprintln(a.out, cart.WhatsAppMessage(items))
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, cart.WhatsAppURL(*number, items))
	return nil
}

// 選択肢なしなら指定なしのみ可
func offered(options []string, v string) bool {
	if v == "" {
		return true
	}
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
