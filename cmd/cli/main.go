// Command tagproof is a CLI client for the tagproofd HTTP API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string `json:"access_token"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "tagproof")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tagproof")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" {
		return "", errors.New("no token saved (run: tagproof auth -token ...)")
	}
	return tf.AccessToken, nil
}

// ---- http ----

func call(ctx context.Context, method, baseURL, path, token string, body any) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(out)))
	}
	return out, nil
}

func pretty(b []byte) string {
	var out any
	if json.Unmarshal(b, &out) == nil {
		j, _ := json.MarshalIndent(out, "", "  ")
		return string(j)
	}
	return string(b)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `tagproof CLI
Usage:
  tagproof -addr URL <cmd> [args]

Commands:
  version
  auth       -token <jwt>                          (saves token)
  health
  scan       -tag <payload>
  tap        -ndef <message> [-tech <csv>]
  initiate   -asset <id>
  confirm    -asset <id> -code <code>
  status     -asset <id>                           (authorization window)
  transfer   -asset <id> -to <user>
  register   -id <id> -name <name> [-category c] [-desc d]
  get        -id <id>
  history    -id <id>
  assets                                           (my assets)
  balance                                          (my balance)
`)
	os.Exit(2)
}

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the tagproofd API.
func main() {
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	authed := func() string {
		token, err := loadToken()
		if err != nil {
			fail(err)
		}
		return token
	}

	switch cmd {

	case "version":
		fmt.Printf("tagproof %s (%s)\n", version, buildDate)

	case "auth":
		fs := flag.NewFlagSet("auth", flag.ExitOnError)
		token := fs.String("token", "", "bearer token issued by the identity provider")
		_ = fs.Parse(flag.Args()[1:])
		if *token == "" {
			fail(errors.New("need -token"))
		}
		if err := saveToken(*token); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "health":
		out, err := call(ctx, http.MethodGet, *addr, "/v1/health", "", nil)
		if err != nil {
			fail(err)
		}
		fmt.Println(pretty(out))

	case "scan":
		fs := flag.NewFlagSet("scan", flag.ExitOnError)
		tagPayload := fs.String("tag", "", "raw tag payload")
		_ = fs.Parse(flag.Args()[1:])
		if *tagPayload == "" {
			fail(errors.New("need -tag"))
		}
		out, err := call(ctx, http.MethodPost, *addr, "/v1/scan", authed(),
			map[string]string{"tag_payload": *tagPayload})
		if err != nil {
			fail(err)
		}
		fmt.Println(pretty(out))

	case "tap":
		fs := flag.NewFlagSet("tap", flag.ExitOnError)
		ndef := fs.String("ndef", "", "NDEF message")
		tech := fs.String("tech", "", "tag technologies (csv)")
		_ = fs.Parse(flag.Args()[1:])
		if *ndef == "" {
			fail(errors.New("need -ndef"))
		}
		out, err := call(ctx, http.MethodPost, *addr, "/v1/taps", authed(),
			map[string]any{"ndef_message": *ndef, "tag_technologies": *tech, "timestamp": time.Now().Unix()})
		if err != nil {
			fail(err)
		}
		fmt.Println(pretty(out))

	case "initiate":
		fs := flag.NewFlagSet("initiate", flag.ExitOnError)
		asset := fs.String("asset", "", "asset id")
		_ = fs.Parse(flag.Args()[1:])
		if *asset == "" {
			fail(errors.New("need -asset"))
		}
		out, err := call(ctx, http.MethodPost, *addr, "/v1/transfers/initiate", authed(),
			map[string]string{"asset_id": *asset})
		if err != nil {
			fail(err)
		}
		fmt.Println(pretty(out))

	case "confirm":
		fs := flag.NewFlagSet("confirm", flag.ExitOnError)
		asset := fs.String("asset", "", "asset id")
		code := fs.String("code", "", "confirmation code")
		_ = fs.Parse(flag.Args()[1:])
		if *asset == "" || *code == "" {
			fail(errors.New("need -asset and -code"))
		}
		out, err := call(ctx, http.MethodPost, *addr, "/v1/transfers/confirm", authed(),
			map[string]string{"asset_id": *asset, "code": *code})
		if err != nil {
			fail(err)
		}
		fmt.Println(pretty(out))

	case "status":
		fs := flag.NewFlagSet("status", flag.ExitOnError)
		asset := fs.String("asset", "", "asset id")
		_ = fs.Parse(flag.Args()[1:])
		if *asset == "" {
			fail(errors.New("need -asset"))
		}
		out, err := call(ctx, http.MethodGet, *addr, "/v1/transfers/"+*asset+"/authorization", authed(), nil)
		if err != nil {
			fail(err)
		}
		fmt.Println(pretty(out))

	case "transfer":
		fs := flag.NewFlagSet("transfer", flag.ExitOnError)
		asset := fs.String("asset", "", "asset id")
		to := fs.String("to", "", "recipient user id")
		_ = fs.Parse(flag.Args()[1:])
		if *asset == "" || *to == "" {
			fail(errors.New("need -asset and -to"))
		}
		out, err := call(ctx, http.MethodPost, *addr, "/v1/transfers/execute", authed(),
			map[string]string{"asset_id": *asset, "to_user_id": *to})
		if err != nil {
			fail(err)
		}
		fmt.Println(pretty(out))

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		id := fs.String("id", "", "asset id (tag uid)")
		name := fs.String("name", "", "product name")
		category := fs.String("category", "", "category")
		desc := fs.String("desc", "", "description")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" || *name == "" {
			fail(errors.New("need -id and -name"))
		}
		out, err := call(ctx, http.MethodPost, *addr, "/v1/assets", authed(),
			map[string]string{"id": *id, "name": *name, "category": *category, "description": *desc})
		if err != nil {
			fail(err)
		}
		fmt.Println(pretty(out))

	case "get":
		fs := flag.NewFlagSet("get", flag.ExitOnError)
		id := fs.String("id", "", "asset id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fail(errors.New("need -id"))
		}
		out, err := call(ctx, http.MethodGet, *addr, "/v1/assets/"+*id, authed(), nil)
		if err != nil {
			fail(err)
		}
		fmt.Println(pretty(out))

	case "history":
		fs := flag.NewFlagSet("history", flag.ExitOnError)
		id := fs.String("id", "", "asset id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fail(errors.New("need -id"))
		}
		out, err := call(ctx, http.MethodGet, *addr, "/v1/assets/"+*id+"/history", authed(), nil)
		if err != nil {
			fail(err)
		}
		fmt.Println(pretty(out))

	case "assets":
		out, err := call(ctx, http.MethodGet, *addr, "/v1/users/me/assets", authed(), nil)
		if err != nil {
			fail(err)
		}
		fmt.Println(pretty(out))

	case "balance":
		out, err := call(ctx, http.MethodGet, *addr, "/v1/users/me/balance", authed(), nil)
		if err != nil {
			fail(err)
		}
		fmt.Println(pretty(out))

	default:
		usage()
	}
}
