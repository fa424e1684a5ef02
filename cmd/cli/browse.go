package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"herohub/internal/present"
)

var (
	listQuery string
	listPage  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show one page of the hero list",
	Example: `  herohub list
  herohub list --query man --page 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := fetchListPage(cmd.Context(), baseURL, listQuery, listPage)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), page)
		}
		printListPage(cmd.OutOrStdout(), page)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one hero in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var page present.DetailPage
		err := doJSON(cmd.Context(), client, http.MethodGet, baseURL+present.HeroHref(args[0]), &page)
		if err != nil && page.Error == "" {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), page)
		}
		printDetailPage(cmd.OutOrStdout(), page)
		if page.Error != "" {
			return fmt.Errorf("error al cargar el detalle: %s", page.Error)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "search by name")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "page number")
}

func fetchListPage(ctx context.Context, base, query string, page int) (present.ListPage, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return present.ListPage{}, fmt.Errorf("invalid base url: %w", err)
	}
	qv := u.Query()
	if query != "" {
		qv.Set("q", query)
	}
	qv.Set("page", strconv.Itoa(page))
	u.RawQuery = qv.Encode()

	var out present.ListPage
	if err := doJSON(ctx, client, http.MethodGet, u.String(), &out); err != nil {
		return present.ListPage{}, err
	}
	return out, nil
}

func printListPage(w io.Writer, p present.ListPage) {
	switch {
	case p.Loading:
		fmt.Fprintln(w, "Cargando…")
	case p.Error != "":
		fmt.Fprintf(w, "Error: %s\n", p.Error)
	case p.Empty != "":
		fmt.Fprintln(w, p.Empty)
	}
	if len(p.Cards) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tIMAGE")
		for _, c := range p.Cards {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.ImageURL)
		}
		_ = tw.Flush()
	}
	fmt.Fprintf(w, "%s (%d)\n", p.PageLabel, p.Total)
}

func printDetailPage(w io.Writer, p present.DetailPage) {
	if p.Name == "" {
		return
	}
	fmt.Fprintf(w, "%s\nId: %s\n", p.Name, p.ID)
	if p.ImageURL != "" {
		fmt.Fprintln(w, p.ImageURL)
	}
	if len(p.Powerstats) > 0 {
		fmt.Fprintln(w, "\nPowerstats")
		for _, s := range p.Powerstats {
			fmt.Fprintf(w, "  %-12s %3d%% %s\n", s.Label, s.Percent, strings.Repeat("#", s.Percent/5))
		}
	}
	for _, sec := range p.Sections {
		fmt.Fprintf(w, "\n%s\n", sec.Title)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, f := range sec.Fields {
			fmt.Fprintf(tw, "  %s\t%s\n", f.Label, f.Value)
		}
		_ = tw.Flush()
	}
}

// doJSON decodes the body into out even on an error status, since the
// api-server answers errors with a view model too.
func doJSON(ctx context.Context, client *http.Client, method, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if out != nil && len(data) > 0 {
		if jerr := json.Unmarshal(data, out); jerr != nil && resp.StatusCode < 300 {
			return jerr
		}
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
