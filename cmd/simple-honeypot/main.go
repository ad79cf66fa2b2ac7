// Copyright 2016-2019 DutchSec (https://dutchsec.com/)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cbk914/simple-honeypot/cmd"
	"github.com/cbk914/simple-honeypot/config"
	"github.com/cbk914/simple-honeypot/listener"
	"github.com/cbk914/simple-honeypot/pushers"
	"github.com/cbk914/simple-honeypot/server"
	"github.com/cbk914/simple-honeypot/services"
	"github.com/fatih/color"
	cli "gopkg.in/urfave/cli.v1"

	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("simple-honeypot/cmd")

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "Load configuration from `FILE`",
	},
	cli.StringSliceFlag{
		Name:  "service, s",
		Usage: "Emulate a service, as `NAME:PORT` (e.g. ssh:2222 ftp:2121 telnet:2323)",
	},
	cli.DurationFlag{
		Name:  "idle-timeout",
		Usage: "Close sessions idle for `DURATION`, 0 waits forever",
	},
	cli.StringFlag{
		Name:  "data-dir",
		Usage: "Store data in `DIR` (default: data-dir from the config, or " + config.DefaultDataDir + ")",
	},
	cli.BoolFlag{Name: "cpu-profile", Usage: "Enable cpu profiler"},
	cli.BoolFlag{Name: "mem-profile", Usage: "Enable memory profiler"},
}

func fail(format string, args ...interface{}) error {
	return cli.NewExitError(color.RedString(format, args...), 1)
}

func serve(c *cli.Context) error {
	if err := config.SetLogging(); err != nil {
		return fail("Error configuring logging: %s", err.Error())
	}

	options := []server.OptionFn{}

	options = append(options, server.WithToken())

	if c.IsSet("data-dir") {
		options = append(options, server.WithDataDir(c.String("data-dir")))
	}

	if v := c.String("config"); v == "" {
	} else if fn, err := server.WithConfig(v); err != nil {
		return fail("Error opening config file: %s", err.Error())
	} else {
		options = append(options, fn)
	}

	if values := c.StringSlice("service"); len(values) > 0 {
		svcs, err := config.ParseServices(values)
		if err != nil {
			return fail("Error parsing services: %s", err.Error())
		}

		options = append(options, server.WithServices(svcs...))
	}

	if c.IsSet("idle-timeout") {
		options = append(options, server.WithIdleTimeout(c.Duration("idle-timeout")))
	}

	if c.Bool("cpu-profile") {
		options = append(options, server.WithCPUProfiler())
	}

	if c.Bool("mem-profile") {
		options = append(options, server.WithMemoryProfiler())
	}

	srv, err := server.New(
		options...,
	)
	if err != nil {
		return fail("Error configuring honeypot: %s", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := make(chan os.Signal, 1)
	signal.Notify(s, os.Interrupt)
	signal.Notify(s, syscall.SIGTERM)

	go func() {
		<-s

		log.Info("Stopping simple-honeypot...")
		cancel()
	}()

	err = srv.Run(ctx)

	srv.Stop()

	if errors.Is(err, server.ErrNoListeners) {
		return fail("None of the services could be started.")
	} else if err != nil {
		return fail("Error running honeypot: %s", err.Error())
	}

	return nil
}

func versionAction(c *cli.Context) error {
	fmt.Println(color.YellowString("simple-honeypot: a low interaction honeypot."))
	fmt.Printf("Version: %s (%s)\n", cmd.Version, cmd.ShortCommitID)
	return nil
}

func servicesAction(c *cli.Context) error {
	fmt.Println("Services:")
	services.Range(func(name string) {
		fmt.Printf("\t%s\n", name)
	})

	fmt.Println("Listeners:")
	listener.Range(func(name string) {
		fmt.Printf("\t%s\n", name)
	})

	fmt.Println("Channels:")
	for _, name := range pushers.Names() {
		fmt.Printf("\t%s\n", name)
	}

	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "simple-honeypot"
	app.Author = ""
	app.Usage = "simple-honeypot"
	app.Version = cmd.Version
	app.Flags = globalFlags
	app.Description = `simple-honeypot: a low interaction honeypot emulating ssh, ftp and telnet.`
	app.CustomAppHelpTemplate = cmd.HelpTemplate
	app.Commands = []cli.Command{
		{
			Name:   "version",
			Usage:  "Show version information",
			Action: versionAction,
		},
		{
			Name:   "services",
			Usage:  "List the available services, listeners and channels",
			Action: servicesAction,
		},
	}

	app.Before = func(c *cli.Context) error {
		return nil
	}

	app.Action = serve

	app.RunAndExitOnError()
}
