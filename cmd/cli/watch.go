package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"herohub/internal/hero"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open a live list session",
	Long: `watch opens a websocket session on the api-server and prints the list
every time it changes. Each input line becomes the search query; the
commands :next, :prev and :goto N move between pages. End with Ctrl-D.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wsURL, err := websocketURL(baseURL, "/ws")
		if err != nil {
			return err
		}
		return runWatch(cmd.Context(), wsURL, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runWatch(ctx context.Context, wsURL string, in io.Reader, out io.Writer) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()
	logger.Debug("live session connected", zap.String("url", wsURL))

	// closed once stdin is exhausted; read errors after that are expected
	stopping := make(chan struct{})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			var msg hero.ServerMessage
			if err := conn.ReadJSON(&msg); err != nil {
				select {
				case <-stopping:
					return nil
				default:
				}
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) || ctx.Err() != nil {
					return nil
				}
				return err
			}
			switch {
			case msg.Type == "error":
				fmt.Fprintf(out, "! %s\n", msg.Error)
			case msg.View != nil:
				fmt.Fprintf(out, "\n[%s] q=%q\n", shortSession(msg.Session), msg.View.Query)
				printListPage(out, *msg.View)
			}
		}
	})
	g.Go(func() error {
		defer func() {
			close(stopping)
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		}()
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			msg, err := parseWatchLine(scanner.Text())
			if err != nil {
				fmt.Fprintf(out, "! %v\n", err)
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
		return scanner.Err()
	})

	return g.Wait()
}

// parseWatchLine maps an input line to a session message.
func parseWatchLine(line string) (hero.ClientMessage, error) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == ":next":
		return hero.ClientMessage{Type: "page", Action: "next"}, nil
	case trimmed == ":prev":
		return hero.ClientMessage{Type: "page", Action: "prev"}, nil
	case strings.HasPrefix(trimmed, ":goto"):
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(trimmed, ":goto")))
		if err != nil {
			return hero.ClientMessage{}, fmt.Errorf("usage: :goto <page>")
		}
		return hero.ClientMessage{Type: "goto", Page: n}, nil
	case strings.HasPrefix(trimmed, ":"):
		return hero.ClientMessage{}, fmt.Errorf("unknown command %s", trimmed)
	default:
		return hero.ClientMessage{Type: "query", Q: line}, nil
	}
}

func shortSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}
