package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionkit-go/internal/api"
	"github.com/yndnr/sessionkit-go/internal/auth"
	"github.com/yndnr/sessionkit-go/internal/cli/output"
)

// ProductCommand returns the product subcommand group.
func ProductCommand() *cli.Command {
	return &cli.Command{
		Name:  "product",
		Usage: "Browse and list products (market)",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all products",
				Action: func(c *cli.Context) error {
					cl, rt, err := profileClient(c, auth.ProfileMarket)
					if err != nil {
						return err
					}
					products, err := cl.Market.ListProducts(c.Context)
					if err != nil {
						return err
					}
					return rt.out.Print(productRows(products))
				},
			},
			{
				Name:  "add",
				Usage: "List a product for sale. Requires a verified payment.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Product name"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Required: true, Usage: "Description"},
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Required: true, Usage: "Product type"},
					&cli.StringSliceFlag{Name: "image", Aliases: []string{"i"}, Usage: "Image URL (repeatable)"},
				},
				Action: productAdd,
			},
		},
	}
}

func productAdd(c *cli.Context) error {
	cl, rt, err := profileClient(c, auth.ProfileMarket)
	if err != nil {
		return err
	}

	p := api.Product{
		Name:        c.String("name"),
		Description: c.String("description"),
		Type:        c.String("type"),
	}
	for _, u := range c.StringSlice("image") {
		p.Images = append(p.Images, api.Image{URL: u})
	}
	if err := cl.Market.AddProduct(c.Context, p); err != nil {
		return err
	}
	return rt.out.Message("Product %q listed", p.Name)
}

type productRows []api.Product

// Table implements output.Tabular.
func (r productRows) Table() *output.Table {
	t := &output.Table{Headers: []string{"NAME", "TYPE", "SELLER", "PHONE", "IMAGES", "DESCRIPTION"}}
	for _, p := range r {
		t.AddRow(p.Name, p.Type, dash(p.SellerName), dash(p.SellerNumber), fmt.Sprint(len(p.Images)), p.Description)
	}
	return t
}

// PaymentCommand returns the payment subcommand group.
func PaymentCommand() *cli.Command {
	return &cli.Command{
		Name:  "payment",
		Usage: "Seller payments (market)",
		Subcommands: []*cli.Command{
			{
				Name:      "verify",
				Usage:     "Confirm a payment and refresh the verified status",
				ArgsUsage: "REFERENCE",
				Action:    paymentVerify,
			},
		},
	}
}

func paymentVerify(c *cli.Context) error {
	cl, rt, err := profileClient(c, auth.ProfileMarket)
	if err != nil {
		return err
	}
	ref := c.Args().First()
	if ref == "" {
		return fmt.Errorf("payment reference required")
	}

	res, err := cl.Market.VerifyPayment(c.Context, ref)
	if err != nil {
		return err
	}
	if !res.Successful {
		return fmt.Errorf("payment %s not verified: %s", ref, res.Message)
	}
	// The verified flag is part of the profile.
	if err := cl.Session.RefreshProfile(c.Context); err != nil {
		rt.log.Warn("profile refresh after payment failed", "error", err)
	}
	return rt.out.Message("%s", res.Message)
}
