// rentctl drives the lease service from the command line. Configuration
// comes from RENTCHAIN_URL and RENTCHAIN_TOKEN; every command prints one
// JSON document on stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/happypapa636/RentChain/pkg/domain"
	"github.com/happypapa636/RentChain/pkg/leasesdk"
)

const usage = `usage: rentctl lease <create|get|list|activate|pay|terminate|status|explain> [flags]`

func main() {
	if len(os.Args) < 3 || os.Args[1] != "lease" {
		fail(usage)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	base := os.Getenv("RENTCHAIN_URL")
	if base == "" {
		base = "http://localhost:8084"
	}
	client := leasesdk.New(base, os.Getenv("RENTCHAIN_TOKEN"))

	switch os.Args[2] {
	case "create":
		runCreate(ctx, client, os.Args[3:])
	case "get":
		runGet(ctx, client, os.Args[3:])
	case "list":
		runList(ctx, client, os.Args[3:])
	case "activate":
		runActivate(ctx, client, os.Args[3:])
	case "pay":
		runPay(ctx, client, os.Args[3:])
	case "terminate":
		runTerminate(ctx, client, os.Args[3:])
	case "status":
		runStatus(ctx, client, os.Args[3:])
	case "explain":
		runExplain(ctx, client, os.Args[3:])
	default:
		fail(usage)
	}
}

func runCreate(ctx context.Context, c *leasesdk.Client, args []string) {
	fs := flag.NewFlagSet("lease create", flag.ExitOnError)
	landlord := fs.String("landlord", "", "landlord account id")
	rent := fs.Int64("rent", 0, "rent per period in minor units")
	deposit := fs.Int64("deposit", 0, "security deposit in minor units")
	periods := fs.Int("periods", 12, "duration in billing periods")
	doc := fs.String("doc", "", "document store reference")
	_ = fs.Parse(args)

	out, err := c.CreateLease(ctx, leasesdk.CreateLeaseRequest{
		Landlord: *landlord,
		Terms: domain.Terms{
			RentAmount:      *rent,
			SecurityDeposit: *deposit,
			DurationPeriods: *periods,
		},
		DocumentRef: *doc,
	})
	finish(out, err)
}

func runGet(ctx context.Context, c *leasesdk.Client, args []string) {
	fs := flag.NewFlagSet("lease get", flag.ExitOnError)
	id := fs.String("id", "", "lease id")
	_ = fs.Parse(args)
	out, err := c.Lease(ctx, *id)
	finish(out, err)
}

func runList(ctx context.Context, c *leasesdk.Client, args []string) {
	fs := flag.NewFlagSet("lease list", flag.ExitOnError)
	landlord := fs.String("landlord", "", "filter by landlord account id")
	tenant := fs.String("tenant", "", "filter by tenant account id")
	_ = fs.Parse(args)
	switch {
	case *landlord != "":
		out, err := c.LeasesByLandlord(ctx, *landlord)
		finish(out, err)
	case *tenant != "":
		out, err := c.LeasesByTenant(ctx, *tenant)
		finish(out, err)
	default:
		fail("lease list requires --landlord or --tenant")
	}
}

func runActivate(ctx context.Context, c *leasesdk.Client, args []string) {
	fs := flag.NewFlagSet("lease activate", flag.ExitOnError)
	id := fs.String("id", "", "lease id")
	tenant := fs.String("tenant", "", "tenant account id")
	payment := fs.Int64("payment", 0, "first payment in minor units")
	_ = fs.Parse(args)
	out, err := c.Activate(ctx, *id, leasesdk.ActivateRequest{Tenant: *tenant, FirstPayment: *payment})
	finish(out, err)
}

func runPay(ctx context.Context, c *leasesdk.Client, args []string) {
	fs := flag.NewFlagSet("lease pay", flag.ExitOnError)
	id := fs.String("id", "", "lease id")
	payer := fs.String("payer", "", "payer account id")
	amount := fs.Int64("amount", 0, "amount in minor units")
	_ = fs.Parse(args)
	out, err := c.PayRent(ctx, *id, leasesdk.PayRentRequest{Payer: *payer, Amount: *amount})
	finish(out, err)
}

func runTerminate(ctx context.Context, c *leasesdk.Client, args []string) {
	fs := flag.NewFlagSet("lease terminate", flag.ExitOnError)
	id := fs.String("id", "", "lease id")
	dispute := fs.Bool("dispute", false, "terminate as a contested exit")
	_ = fs.Parse(args)
	reason := domain.ReasonNormal
	if *dispute {
		reason = domain.ReasonDispute
	}
	out, err := c.Terminate(ctx, *id, leasesdk.TerminateRequest{Reason: reason})
	finish(out, err)
}

func runStatus(ctx context.Context, c *leasesdk.Client, args []string) {
	fs := flag.NewFlagSet("lease status", flag.ExitOnError)
	id := fs.String("id", "", "lease id")
	_ = fs.Parse(args)
	out, err := c.Status(ctx, *id)
	finish(out, err)
}

func runExplain(ctx context.Context, c *leasesdk.Client, args []string) {
	fs := flag.NewFlagSet("lease explain", flag.ExitOnError)
	id := fs.String("id", "", "lease id")
	_ = fs.Parse(args)
	out, err := c.Explain(ctx, *id)
	finish(out, err)
}

func finish(out any, err error) {
	if err != nil {
		fail(err.Error())
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
