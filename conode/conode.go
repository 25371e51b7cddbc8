// Conode runs one control component of the Return Codes protocol. It is an
// onet server with the ReturnCodes service.
//
// First create the configuration of the server with:
//
//	./conode setup
//
// Then launch the daemon with:
//
//	./conode
//
// The setup authority addresses the four conodes of a card set through the
// public group description written by the setup.
package main

import (
	"os"
	"path"

	"go.dedis.ch/onet/v3/app"
	"go.dedis.ch/onet/v3/cfgpath"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	_ "go.dedis.ch/returncodes/service"
	cli "gopkg.in/urfave/cli.v1"
)

const (
	// DefaultName is the name of the binary we produce and is used to create a directory
	// folder with this name
	DefaultName = "conode"

	// Version of this binary
	Version = "1.0"
)

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = DefaultName
	cliApp.Usage = "run a Return Codes control component"
	cliApp.Version = Version
	serverFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: defaultConfigFile(),
			Usage: "configuration file of the server",
		},
		cli.IntFlag{
			Name:  "debug, d",
			Value: 0,
			Usage: "debug-level: 1 for terse, 5 for maximal",
		},
	}

	cliApp.Commands = []cli.Command{
		{
			Name:    "setup",
			Aliases: []string{"s"},
			Usage:   "Setup server configuration (interactive)",
			Action: func(c *cli.Context) error {
				app.InteractiveConfig(returncodes.Suite, DefaultName)
				return nil
			},
		},
		{
			Name:  "server",
			Usage: "Start the control component",
			Action: func(c *cli.Context) error {
				runServer(c)
				return nil
			},
			Flags: serverFlags,
		},
	}
	cliApp.Flags = serverFlags
	cliApp.Before = func(c *cli.Context) error {
		log.SetDebugVisible(c.Int("debug"))
		return nil
	}
	cliApp.Action = func(c *cli.Context) error {
		runServer(c)
		return nil
	}

	log.ErrFatal(cliApp.Run(os.Args))
}

// defaultConfigFile returns the private configuration written by setup.
func defaultConfigFile() string {
	return path.Join(cfgpath.GetConfigPath(DefaultName), app.DefaultServerConfig)
}

func runServer(c *cli.Context) {
	app.RunServer(c.String("config"))
}
