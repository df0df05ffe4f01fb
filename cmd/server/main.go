package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"focusroom/internal/config"
	"focusroom/internal/session"
	"focusroom/internal/ws"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`FocusRoom - Shared team pomodoro timer

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT             Port to listen on (default: 8080)
  FOCUS_DURATION   Focus phase length in seconds (default: 1500)
  BREAK_DURATION   Break phase length in seconds (default: 300)
  CORS_ORIGIN      Allowed origin for Socket.IO requests (default: *)

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000

Connect clients to ws://<host>:<port>/socket.io/ after starting the server.
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("FocusRoom %s\n", version)
		return
	}

	// Config
	cfg := config.FromEnv()
	if *portFlag != "" {
		cfg.Port = *portFlag
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Socket server + coordinator
	srv := ws.New(cfg)
	coord := session.New(srv, clockwork.NewRealClock(), cfg.FocusDuration, cfg.BreakDuration)
	io := srv.Mount(r, coord)
	defer io.Close()

	log.Printf("listening on :%s", cfg.Port)
	for _, ip := range localIPv4Addresses() {
		log.Printf("also accessible via http://%s:%s", ip, cfg.Port)
	}
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// localIPv4Addresses lists non-loopback IPv4 addresses so teammates on the
// same network can find the room.
func localIPv4Addresses() []string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	var out []string
	for _, a := range addrs {
		ipn, ok := a.(*net.IPNet)
		if !ok || ipn.IP.IsLoopback() {
			continue
		}
		if ip4 := ipn.IP.To4(); ip4 != nil {
			out = append(out, ip4.String())
		}
	}
	return out
}
