package main

import (
	"context"
	"fmt"
	"os"

	"github.com/taybart/args"
	"github.com/taybart/log"
	"golang.org/x/term"

	"github.com/zhucebuliaopx/requests/file"
	"github.com/zhucebuliaopx/requests/server"
)

var (
	a = args.App{
		Name:    "requests",
		Version: "v0.1.0",
		About:   "run request files, or serve a local test server",
		Args: map[string]*args.Arg{
			"file": {
				Short:   "f",
				Help:    "Request file to run",
				Default: "",
			},
			"label": {
				Short:   "l",
				Help:    "Only run the request with this label",
				Default: "",
			},
			"serve": {
				Short:   "s",
				Help:    "Run the test server",
				Default: false,
			},
			"addr": {
				Short:   "a",
				Help:    "Address for the test server",
				Default: "localhost:8080",
			},
			"verbose": {
				Short:   "v",
				Help:    "Verbose output",
				Default: false,
			},
		},
	}

	c = struct {
		File    string `arg:"file"`
		Label   string `arg:"label"`
		Serve   bool   `arg:"serve"`
		Addr    string `arg:"addr"`
		Verbose bool   `arg:"verbose"`
	}{}
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	if err := a.Parse(); err != nil {
		return err
	}
	if err := a.Marshal(&c); err != nil {
		return err
	}

	log.SetLevel(log.WARN)
	if c.Verbose {
		log.SetLevel(log.DEBUG)
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		log.UseColors(false)
	}

	switch {
	case c.Serve:
		s := server.New(server.Config{Addr: c.Addr})
		log.Infof("listening on %s...\n", c.Addr)
		return s.ListenAndServe()
	case c.File != "":
		if c.Label != "" {
			return file.RunLabel(context.Background(), c.File, c.Label)
		}
		return file.Run(context.Background(), c.File)
	}
	return fmt.Errorf("nothing to do, pass -f or -s")
}
