package main

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/nftbazaar/marketplace/internal/config"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// Operator tool talking to a running marketd over its admin API.
func main() {
	config.Init("cli")

	app := &cli.App{
		Name:  "marketplace-cli",
		Usage: "administer a running marketplace daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "http://localhost:8080", Usage: "marketd base url"},
			&cli.StringFlag{Name: "caller", Required: true, Usage: "identity performing the call"},
		},
		Commands: []*cli.Command{
			{
				Name:      "collection:add",
				Usage:     "approve a collection for custody",
				ArgsUsage: "<contract>",
				Action: func(c *cli.Context) error {
					body := fmt.Sprintf(`{"contract":%q}`, c.Args().First())
					return call(c, "POST", "/admin/collections", body)
				},
			},
			{
				Name:      "collection:remove",
				Usage:     "remove a collection from the approved set",
				ArgsUsage: "<contract>",
				Action: func(c *cli.Context) error {
					return call(c, "DELETE", "/admin/collections/"+c.Args().First(), "")
				},
			},
			{
				Name:      "fee:set",
				Usage:     "set the marketplace fee percentage",
				ArgsUsage: "<percent>",
				Action: func(c *cli.Context) error {
					body := fmt.Sprintf(`{"feePercentage":%s}`, c.Args().First())
					return call(c, "PUT", "/admin/fee", body)
				},
			},
			{
				Name:      "listing:get",
				Usage:     "fetch the active listing for an asset",
				ArgsUsage: "<contract> <tokenId>",
				Action: func(c *cli.Context) error {
					return call(c, "GET", fmt.Sprintf("/listings/%s/%s", c.Args().Get(0), c.Args().Get(1)), "")
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("CLI failed")
	}
}

func call(c *cli.Context, method, path, body string) error {
	client := retryablehttp.NewClient()
	client.Logger = nil

	req, err := retryablehttp.NewRequest(method, c.String("host")+path, bytes.NewReader([]byte(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Market-Caller", c.String("caller"))

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, _ := ioutil.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s: %s", resp.Status, string(payload))
	}

	if len(payload) != 0 {
		fmt.Println(string(payload))
	}

	return nil
}
