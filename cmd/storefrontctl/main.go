package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/cart"
	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/storeclient"
)

var Version = "dev"

type options struct {
	apiURL   string
	token    string
	cartPath string
}

func (o *options) client() *storeclient.Client {
	return storeclient.NewClient(o.apiURL, o.token)
}

func (o *options) store() (cart.FileStore, error) {
	if o.cartPath != "" {
		return cart.FileStore{Path: o.cartPath}, nil
	}
	p, err := cart.DefaultPath()
	if err != nil {
		return cart.FileStore{}, err
	}
	return cart.FileStore{Path: p}, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Storefront operations and shopper tooling",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.apiURL, "api", pkgconfig.EnvDefault("STOREFRONT_API", "http://localhost:8080/api/v1"), "storefront API base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", pkgconfig.EnvDefault("STOREFRONT_TOKEN", ""), "access token issued by the identity provider")
	root.PersistentFlags().StringVar(&opts.cartPath, "cart", pkgconfig.EnvDefault("STOREFRONT_CART", ""), "cart file (default: user config dir)")

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newRelayCmd())
	root.AddCommand(newReindexCmd())
	root.AddCommand(newCartCmd(opts))
	root.AddCommand(newVerifyCmd(opts))

	return root
}

func main() {
	pkgconfig.LoadDotEnv()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
