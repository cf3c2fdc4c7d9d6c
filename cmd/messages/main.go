package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/hab-telemetry/rockblock-receiver/internal/config"
	"github.com/hab-telemetry/rockblock-receiver/internal/report"
	"github.com/hab-telemetry/rockblock-receiver/internal/service"
	"github.com/hab-telemetry/rockblock-receiver/internal/storage"
)

type ctxKey string

const storeKey ctxKey = "store"

func initStorage(c *cli.Context) error {
	cfg := config.Load()
	if cfg.Storage.Bucket == "" {
		return fmt.Errorf("STORAGE_BUCKET must be set")
	}

	store, err := storage.NewFromConfig(c.Context, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	c.Context = context.WithValue(c.Context, storeKey, store)
	return nil
}

func storeFromContext(c *cli.Context) storage.ObjectStorage {
	store, _ := c.Context.Value(storeKey).(storage.ObjectStorage)
	return store
}

func listOptions(c *cli.Context) (service.ListOptions, error) {
	opts := service.ListOptions{
		IMEI:  c.String("imei"),
		Limit: c.Int("limit"),
	}
	if since := c.String("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return opts, fmt.Errorf("invalid --since value %q: %w", since, err)
		}
		opts.Since = t
	}
	return opts, nil
}

func runReport(c *cli.Context) error {
	opts, err := listOptions(c)
	if err != nil {
		return err
	}

	messages, err := service.NewMessageService(storeFromContext(c), nil).List(c.Context, opts)
	if err != nil {
		return err
	}

	report.Render(os.Stdout, messages)
	return nil
}

func runList(c *cli.Context) error {
	store := storeFromContext(c)
	objects, err := store.ListObjects(c.Context, c.String("imei"))
	if err != nil {
		return err
	}

	if len(objects) == 0 {
		fmt.Println("No objects found")
		return nil
	}
	for _, obj := range objects {
		fmt.Printf("%s\t%d\n", obj.Key, obj.Size)
	}
	return nil
}

func messageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "imei",
			Usage:   "Only show messages from this device",
			EnvVars: []string{"IMEI_FILTER"},
		},
		&cli.StringFlag{
			Name:  "since",
			Usage: "Only show messages received at or after this RFC3339 time",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of messages to show (0 = all)",
			Value: 10,
		},
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "messages",
		Usage: "Download and report stored satellite messages",
		Commands: []*cli.Command{
			{
				Name:   "report",
				Usage:  "Fetch stored messages and print a decoded report",
				Flags:  messageFlags(),
				Before: initStorage,
				Action: runReport,
			},
			{
				Name:  "list",
				Usage: "List stored object keys without fetching bodies",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "imei",
						Usage:   "Only list objects for this device",
						EnvVars: []string{"IMEI_FILTER"},
					},
				},
				Before: initStorage,
				Action: runList,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
