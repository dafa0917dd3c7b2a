package main

import (
	_ "embed"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/tomz197/redlight/internal/config"
	redlog "github.com/tomz197/redlight/internal/logging"
)

//go:embed index.html
var htmlPage string

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := redlog.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	http.Handle("/", landingHandler(cfg.Web.DisplayHost, cfg.SSH.Port))

	addr := net.JoinHostPort(cfg.Web.Host, cfg.Web.Port)
	log.Info("starting web server", zap.String("addr", "http://"+addr))
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

// landingHandler serves the page telling visitors how to connect.
func landingHandler(sshHost, sshPort string) http.Handler {
	command := "ssh " + sshHost
	if sshPort != "" && sshPort != "22" {
		command = fmt.Sprintf("ssh -p %s %s", sshPort, sshHost)
	}
	page := strings.ReplaceAll(htmlPage, "{{.SSHCommand}}", command)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
}
