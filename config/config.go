package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr              string
	DBUrl             string
	TokenSecret       string
	TokenTTL          time.Duration
	Debug             bool
	AirtableURL       string
	AirtableRPS       float64
	WebhookSecret     string
	BootstrapUser     string
	BootstrapPassword string
}

// file mirrors the flags in an optional YAML config file.
type file struct {
	Host              *string  `yaml:"host"`
	Port              *uint    `yaml:"port"`
	DBUrl             *string  `yaml:"db_url"`
	TokenSecret       *string  `yaml:"token_secret"`
	TokenTTL          *uint    `yaml:"token_ttl"`
	Debug             *bool    `yaml:"debug"`
	AirtableURL       *string  `yaml:"airtable_url"`
	AirtableRPS       *float64 `yaml:"airtable_rps"`
	WebhookSecret     *string  `yaml:"webhook_secret"`
	BootstrapUser     *string  `yaml:"bootstrap_user"`
	BootstrapPassword *string  `yaml:"bootstrap_password"`
}

func ParseFlags() (Config, error) {
	return Parse(os.Args[1:])
}

// Parse reads the command line. Values from the -config file apply to every
// flag not given explicitly.
func Parse(args []string) (cfg Config, err error) {
	fs := flag.NewFlagSet("quick-form", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "path to a YAML config file")
	host := fs.String("host", "0.0.0.0", "listen host name")
	port := fs.Uint("port", 80, "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", "qform.sqlite", "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", "", "secret key for token encryption and decryption")
	ttl := fs.Uint("token-ttl", 120, "token TTL in seconds")
	fs.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	fs.StringVar(&cfg.AirtableURL, "airtable-url", "https://api.airtable.com", "Airtable API base URL")
	fs.Float64Var(&cfg.AirtableRPS, "airtable-rps", 5, "max Airtable requests per second")
	fs.StringVar(&cfg.WebhookSecret, "webhook-secret", "", "base64 MAC secret of the Airtable webhook (empty disables verification)")
	fs.StringVar(&cfg.BootstrapUser, "bootstrap-user", "", "owner account created at startup if missing")
	fs.StringVar(&cfg.BootstrapPassword, "bootstrap-password", "", "password of the bootstrap owner")

	if err = fs.Parse(args); err != nil {
		return
	}

	if configPath != "" {
		set := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

		var f file
		f, err = readFile(configPath)
		if err != nil {
			return
		}
		apply(set["host"], f.Host, host)
		apply(set["port"], f.Port, port)
		apply(set["db-url"], f.DBUrl, &cfg.DBUrl)
		apply(set["token-secret"], f.TokenSecret, &cfg.TokenSecret)
		apply(set["token-ttl"], f.TokenTTL, ttl)
		apply(set["debug"], f.Debug, &cfg.Debug)
		apply(set["airtable-url"], f.AirtableURL, &cfg.AirtableURL)
		apply(set["airtable-rps"], f.AirtableRPS, &cfg.AirtableRPS)
		apply(set["webhook-secret"], f.WebhookSecret, &cfg.WebhookSecret)
		apply(set["bootstrap-user"], f.BootstrapUser, &cfg.BootstrapUser)
		apply(set["bootstrap-password"], f.BootstrapPassword, &cfg.BootstrapPassword)
	}

	cfg.Addr = net.JoinHostPort(*host, strconv.Itoa(int(*port)))
	cfg.TokenTTL = time.Duration(*ttl) * time.Second

	switch {
	case cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret")
	case cfg.AirtableRPS <= 0:
		err = errors.New("-airtable-rps must be positive")
	}

	return
}

func readFile(path string) (f file, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read config: %w", err)
	}
	if err = yaml.Unmarshal(b, &f); err != nil {
		err = fmt.Errorf("parse config %s: %w", path, err)
	}
	return
}

func apply[T any](explicit bool, from *T, to *T) {
	if !explicit && from != nil {
		*to = *from
	}
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
