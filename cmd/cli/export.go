package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"herohub/internal/grpcserver"
	"herohub/internal/mirror"
	"herohub/internal/present"
)

var (
	exportOut   string
	exportQuery string
	exportJobs  int
	exportRate  float64
)

var exportCmd = &cobra.Command{
	Use:   "export <json|csv|mirror>",
	Short: "Export the hero list to a file",
	Long: `json and csv walk every page of the api-server list (optionally
filtered with --query). mirror fetches every full hero over gRPC and writes a
file mirror-server can serve.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "csv", "mirror"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		format := args[0]
		out := exportOut
		if out == "" {
			out = defaultExportPath(format)
		}

		switch format {
		case "json", "csv":
			cards, err := fetchAllCards(ctx, baseURL, exportQuery)
			if err != nil {
				return fmt.Errorf("export %s failed: %w", format, err)
			}
			if format == "json" {
				err = writeJSON(out, cards)
			} else {
				err = writeCSV(out, cards)
			}
			if err != nil {
				return fmt.Errorf("write %s failed: %w", format, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ exported %d heroes to %s\n", len(cards), out)
		case "mirror":
			n, err := exportMirror(ctx, grpcAddr, out, exportJobs, exportRate)
			if err != nil {
				return fmt.Errorf("export mirror failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ exported %d heroes to %s\n", n, out)
		default:
			return fmt.Errorf("unknown format %q (want json, csv or mirror)", format)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path (default data/heroes.<format>)")
	exportCmd.Flags().StringVarP(&exportQuery, "query", "q", "", "only heroes matching this name")
	exportCmd.Flags().IntVar(&exportJobs, "jobs", 8, "parallel detail fetches for mirror")
	exportCmd.Flags().Float64Var(&exportRate, "rate", 10, "max detail fetches per second for mirror (0 = unlimited)")
}

func defaultExportPath(format string) string {
	if format == "mirror" {
		return "data/mirror.json"
	}
	return "data/heroes." + format
}

// fetchAllCards walks the list pages until the last one.
func fetchAllCards(ctx context.Context, base, query string) ([]present.Card, error) {
	var out []present.Card
	for page := 1; ; page++ {
		p, err := fetchListPage(ctx, base, query, page)
		if err != nil {
			return nil, err
		}
		if p.Error != "" {
			return nil, errors.New(p.Error)
		}
		if p.Page != page {
			break
		}
		out = append(out, p.Cards...)
		if p.NextDisabled {
			break
		}
	}
	return out, nil
}

func exportMirror(ctx context.Context, addr, path string, jobs int, perSecond float64) (int, error) {
	conn, err := dialGRPC(addr)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	rpc := grpcserver.NewClient(conn)

	summaries, err := rpc.ListHeroes(ctx, "")
	if err != nil {
		return 0, err
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if perSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}

	records := make([]mirror.Record, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, s := range summaries {
		i, s := i, s
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			h, err := rpc.GetHero(gctx, s.ID)
			if err != nil {
				return fmt.Errorf("hero %s: %w", s.ID, err)
			}
			rec, err := mirror.FromHero(h)
			if err != nil {
				return err
			}
			records[i] = rec
			logger.Debug("fetched hero", zap.String("id", s.ID))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(records), mirror.WriteFile(path, records)
}

func writeJSON(path string, cards []present.Card) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if cards == nil {
		cards = []present.Card{}
	}
	b, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeCSV(path string, cards []present.Card) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"id", "name", "image_url", "href"}); err != nil {
		return err
	}
	for _, c := range cards {
		if err := writer.Write([]string{c.ID, c.Name, c.ImageURL, c.Href}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
