// botmanage es el CLI de administración contra la API HTTP del
// servicio: lectura/escritura de configs por guild, refresh de sesión
// y health check.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	cli := &client{HTTP: &http.Client{Timeout: 15 * time.Second}}

	root := &cobra.Command{
		Use:   "botmanage",
		Short: "CLI de administración del servicio de configs por guild",
	}
	root.PersistentFlags().StringVar(&cli.BaseURL, "base-url", envOr("BOTMANAGE_URL", "http://localhost:8080"), "URL base del servicio")
	root.PersistentFlags().StringVar(&cli.Token, "token", os.Getenv("BOTMANAGE_TOKEN"), "session token (bearer)")
	root.PersistentFlags().StringVar(&cli.OutFormat, "out", "json", "formato de salida: json|text")

	configCmd := &cobra.Command{Use: "config", Short: "Operaciones sobre la config de un guild"}

	configGet := &cobra.Command{
		Use:   "get <guild-id>",
		Short: "Obtiene la config de un guild",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cli.do(http.MethodGet, "/api/config/"+args[0], nil)
			if err != nil {
				return err
			}
			cli.print(status, body)
			return nil
		},
	}

	var configFile string
	configSet := &cobra.Command{
		Use:   "set <guild-id>",
		Short: "Escribe la config de un guild desde un archivo JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(configFile)
			if err != nil {
				return err
			}
			status, respBody, err := cli.do(http.MethodPost, "/api/config/"+args[0], body)
			if err != nil {
				return err
			}
			cli.print(status, respBody)
			return nil
		},
	}
	configSet.Flags().StringVarP(&configFile, "file", "f", "", "archivo JSON con la config")
	_ = configSet.MarkFlagRequired("file")

	configCmd.AddCommand(configGet, configSet)

	tokenCmd := &cobra.Command{Use: "token", Short: "Operaciones sobre el session token"}
	tokenRefresh := &cobra.Command{
		Use:   "refresh",
		Short: "Emite un token nuevo usando la credencial de refresh embebida",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cli.do(http.MethodGet, "/oauth/refresh", nil)
			if err != nil {
				return err
			}
			cli.print(status, body)
			return nil
		},
	}
	tokenCmd.AddCommand(tokenRefresh)

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Verifica que el servicio responda",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cli.do(http.MethodGet, "/healthz", nil)
			if err != nil {
				return err
			}
			cli.print(status, body)
			return nil
		},
	}

	root.AddCommand(configCmd, tokenCmd, healthCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
