package main

import (
	"fmt"
	"net"
	"os"

	"github.com/rezicom/vendd/pkg/config"
	"github.com/urfave/cli"
)

const cfgCommandDescription = `This command allows you to load, modify and test configuration
files.`

var cfg = config.DefaultConfig()

var configCommand = cli.Command{
	Name:        "config",
	ShortName:   "cfg",
	Usage:       "Configuration related tools.",
	Description: cfgCommandDescription,
	Subcommands: []cli.Command{
		testConfigCommand,
		writeConfigCommand,
	},
}

var testConfigCommand = cli.Command{
	Name:      "test",
	ShortName: "t",
	Usage:     "Test configuration.",
	Action:    testConfigAction,
}

func configFileName(c *cli.Context) string {
	return c.GlobalString("config")
}

func readConfig(c *cli.Context) bool {
	if configFileName(c) != "" {
		if !readConfigFile(configFileName(c)) {
			return false
		}
	} else {
		fmt.Println("no config file flag provided. will use default config...")
	}
	cfg.ApplyEnv()
	return true
}

func readConfigFile(cfgFileName string) bool {
	fmt.Printf("will read config file %s...\n", cfgFileName)
	cfgFile, err := os.Open(cfgFileName)
	if err != nil {
		fmt.Printf("error opening config file %s: %v\n", cfgFileName, err)
		return false
	}
	defer cfgFile.Close()
	cfg, err = config.ReadConfig(cfgFile)
	if err != nil {
		fmt.Printf("error reading config file %s: %v\n", cfgFileName, err)
		return false
	}
	return true
}

func testConfigAction(c *cli.Context) error {
	if !readConfig(c) {
		return nil
	}

	errors := 0
	warnings := 0

	if cfg.Service.Address == "" {
		errors++
		fmt.Println("error: Service.Address is empty.")
	} else {
		addr, err := net.ResolveTCPAddr("tcp", cfg.Service.Address)
		if err != nil {
			errors++
			fmt.Printf("error: Service.Address could not be resolved: %v\n", err)
		} else {
			fmt.Printf("Service.Address: server will use network %s and address %s\n", addr.Network(), addr.String())
		}
	}

	if _, err := cfg.Prism.SendTimeout.Duration(); err != nil {
		errors++
		fmt.Printf("error: Prism.SendTimeout is not a duration: %v\n", err)
	}
	if _, err := cfg.Prism.RecvTimeout.Duration(); err != nil {
		errors++
		fmt.Printf("error: Prism.RecvTimeout is not a duration: %v\n", err)
	}
	if cfg.Prism.Password == "" {
		warnings++
		fmt.Printf("warning: Prism.Password is empty. set it or export %s.\n", config.EnvPrismPassword)
	}
	if cfg.Mpesa.Passkey == "" {
		warnings++
		fmt.Printf("warning: Mpesa.Passkey is empty. set it or export %s.\n", config.EnvMpesaPasskey)
	}
	if cfg.Mpesa.CallbackURL == "" {
		warnings++
		fmt.Println("warning: Mpesa.CallbackURL is empty. result callbacks cannot be delivered.")
	}
	if cfg.API.MinVendAmount < 1 {
		warnings++
		fmt.Println("warning: API.MinVendAmount is below 1.")
	}

	fmt.Printf("\n\nconfig testing complete.\n%d errors and %d warnings.\n", errors, warnings)
	return nil
}

var writeConfigCommand = cli.Command{
	Name:      "write",
	ShortName: "w",
	Usage:     "Will write the config in buffer to the given output file.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "output, o",
			Usage: "Output file to write to.",
		},
	},
	Action: writeConfigAction,
}

func writeConfigAction(c *cli.Context) error {
	cfgFileName := c.String("output")
	if cfgFileName == "" {
		fmt.Print("no output file name provided\n\n")
		cli.ShowCommandHelp(c, "w")
		return nil
	}

	if !readConfig(c) {
		return nil
	}
	cfgFile, err := os.OpenFile(cfgFileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0600)
	if err != nil {
		fmt.Printf("error opening config file %s for writing: %v\n", cfgFileName, err)
		return nil
	}
	defer cfgFile.Close()
	err = config.WriteConfig(cfgFile, cfg)
	if err != nil {
		fmt.Printf("error writing config to file %s: %v\n", cfgFileName, err)
		return nil
	}
	fmt.Printf("config written to %s.\n", cfgFileName)
	return nil
}
