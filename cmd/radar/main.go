// radar - command line client for the Radar location API
//
//	radar [-config radar.yaml] <command> [options]
//
// Client state (publishable key, device id, active trip) is kept in the
// storage configured in the config file, so a trip started by one
// invocation can be completed by the next.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"com.aviebrantz.radar-client/pkg/config"
	"com.aviebrantz.radar-client/pkg/status"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("radar", flag.ContinueOnError)
	configPath := global.String("config", "radar.yaml", "Path to a YAML or TOML config file")
	global.Usage = usage
	if err := global.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	rest := global.Args()
	if len(rest) == 0 {
		usage()
		return 2
	}
	name, cmdArgs := rest[0], rest[1:]
	if name == "help" {
		usage()
		return 0
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		usage()
		return 2
	}

	cfg, err := config.LoadConfigFromFile(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	log.SetHandler(cli.New(os.Stderr))
	level, err := log.ParseLevel(cfg.LogConfig.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("could not start client")
		return 1
	}
	defer a.Close()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "USAGE:\n    radar %s %s\n\n%s\n\nOPTIONS:\n", name, cmd.args, cmd.summary)
		fs.PrintDefaults()
	}
	runCmd := cmd.setup(fs)
	if err := fs.Parse(cmdArgs); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	res, raw, err := runCmd(ctx, a.radar, fs.Args())
	if err != nil {
		return report(err, raw)
	}
	printJSON(res)
	return 0
}

func report(err error, raw map[string]interface{}) int {
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintln(os.Stderr, "Error:", usageErr.msg)
		return 2
	}

	out := map[string]interface{}{"status": status.Of(err)}
	if raw != nil {
		out["response"] = raw
	}
	printJSON(out)
	log.WithError(err).Debug("request failed")
	return 1
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
}

type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func usage() {
	fmt.Println(`radar - Radar location API client

USAGE:
    radar [-config radar.yaml] <command> [options]

COMMANDS:
    device              Show or change the device identity
    location            Show the configured device position
    track               Track the device once
    context             Get the context of a position
    trip <action>       start, update, complete, cancel or show a trip
    places              Search places near a position
    geofences           Search geofences near a position
    autocomplete <q>    Autocomplete an address
    geocode <q>         Geocode an address
    reverse             Reverse geocode a position
    ip [address]        Geocode an IP address
    distance            Distance between two positions
    matrix              Distances between origins and destinations
    help                Show this help message

Run "radar <command> -h" for the options of a command.`)
}
