package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"oifit/internal/client"
	"oifit/internal/domain/cart"
	"oifit/internal/infra/cartstorage"
	"oifit/internal/logger"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

const usage = `usage: oifit [flags] <command>

commands:
  cart add <product-id> [--size S] [--color C] [--qty N]
  cart rm <product-id> [--size S] [--color C]
  cart qty <product-id> <n> [--size S] [--color C]
  cart ls
  cart clear
  cities
  checkout [--city NAME] [--address-id ID] [address flags]
  checkout return <client_secret> [--redirect-status S]
  whatsapp [--number N]
`

// 店舗のWhatsApp
const shopWhatsApp = "553598985318"

type app struct {
	api   *client.Client
	store *cart.Store
	log   zerolog.Logger
	out   io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "oifit:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("oifit", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	apiURL := fs.String("api", getenv("OIFIT_API_URL", "http://localhost:8080"), "storefront API base URL")
	token := fs.String("token", os.Getenv("OIFIT_TOKEN"), "bearer token")
	cartFile := fs.String("cart-file", getenv("OIFIT_CART_FILE", defaultCartFile()), "local cart file")
	logLevel := fs.String("log-level", getenv("LOG_LEVEL", "warn"), "log level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	log := logger.NewWithWriter(os.Stderr, "dev", *logLevel)
	store := cart.Open(ctx, cartstorage.NewFileStorage(*cartFile), log)
	defer store.Close()

	a := &app{
		api:   client.New(*apiURL, *token, nil),
		store: store,
		log:   log,
		out:   out,
	}

	rest := fs.Args()
	switch rest[0] {
	case "cart":
		return a.cart(ctx, rest[1:])
	case "cities":
		return a.cities(ctx)
	case "checkout":
		if len(rest) > 1 && rest[1] == "return" {
			return a.checkoutReturn(ctx, rest[2:])
		}
		return a.checkout(ctx, rest[1:])
	case "whatsapp":
		return a.whatsapp(rest[1:])
	}
	fs.Usage()
	return fmt.Errorf("unknown command %q", rest[0])
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultCartFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "oifit-cart.json"
	}
	return filepath.Join(dir, "oifit", "cart.json")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}
